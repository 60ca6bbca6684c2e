// Package db provides read-only SQLite access to the Steam games database.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mvoronin/speech-apps/logger"
)

// SteamDB wraps a read-only connection to the steam_games SQLite file.
type SteamDB struct {
	conn *sql.DB
	path string
}

// Open validates that the database file exists and opens it read-only.
func Open(path string) (*SteamDB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database was not found: %s", path)
	}
	conn, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	logger.Logf("Database manager initialised with %s", path)
	return &SteamDB{conn: conn, path: path}, nil
}

// Close releases the underlying connection pool.
func (s *SteamDB) Close() error {
	return s.conn.Close()
}

// ExecuteQuery runs an arbitrary SQL statement and returns the rows as
// column-name → value maps.
func (s *SteamDB) ExecuteQuery(ctx context.Context, query string, params ...any) ([]map[string]any, error) {
	rows, err := s.conn.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// SearchGames returns games whose names contain the provided text,
// best-rated first.
func (s *SteamDB) SearchGames(ctx context.Context, name string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT appid, name, release_date, price
		FROM steam_games
		WHERE name LIKE ?
		ORDER BY positive_ratings DESC
		LIMIT ?`
	return s.ExecuteQuery(ctx, query, "%"+name+"%", limit)
}

// GenreCount is one bucket of the genre histogram.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// GenreCounts aggregates how many games carry each genre. The genres column
// stores semicolon-separated lists, so the per-row counts are split and
// re-summed per individual genre.
func (s *SteamDB) GenreCounts(ctx context.Context, limit int) ([]GenreCount, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT genres, COUNT(*) AS total
		FROM steam_games
		WHERE genres IS NOT NULL AND genres != ''
		GROUP BY genres
		ORDER BY total DESC
		LIMIT ?`
	rows, err := s.ExecuteQuery(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	totals := map[string]int{}
	for _, row := range rows {
		genres, _ := row["genres"].(string)
		total := toInt(row["total"])
		for _, genre := range splitGenres(genres) {
			totals[genre] += total
		}
	}

	out := make([]GenreCount, 0, len(totals))
	for genre, count := range totals {
		out = append(out, GenreCount{Genre: genre, Count: count})
	}
	sortGenreCounts(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
