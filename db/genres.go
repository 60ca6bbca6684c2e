package db

import (
	"sort"
	"strings"
)

func splitGenres(genres string) []string {
	var out []string
	for _, genre := range strings.Split(genres, ";") {
		genre = strings.TrimSpace(genre)
		if genre != "" {
			out = append(out, genre)
		}
	}
	return out
}

func sortGenreCounts(counts []GenreCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Genre < counts[j].Genre
	})
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
