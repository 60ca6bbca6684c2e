package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
)

func newTestDB(t *testing.T) *SteamDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "steam.sqlite")

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("opening scratch db: %v", err)
	}
	defer conn.Close()

	schema := `
		CREATE TABLE steam_games (
			appid INTEGER,
			name TEXT,
			release_date TEXT,
			price REAL,
			positive_ratings INTEGER,
			genres TEXT
		);
		INSERT INTO steam_games VALUES
			(10, 'Counter-Strike', '2000-11-01', 7.19, 124534, 'Action'),
			(220, 'Half-Life 2', '2004-11-16', 7.19, 67902, 'Action'),
			(570, 'Dota 2', '2013-07-09', 0.0, 863507, 'Action;Free to Play;Strategy'),
			(240720, 'Getting Over It', '2017-12-06', 5.79, 23456, 'Action;Indie');`
	if _, err := conn.Exec(schema); err != nil {
		t.Fatalf("seeding scratch db: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.sqlite"))
	if err == nil {
		t.Fatal("expected error for missing database file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error should mention the missing file: %v", err)
	}
}

func TestExecuteQuery(t *testing.T) {
	store := newTestDB(t)
	rows, err := store.ExecuteQuery(context.Background(),
		"SELECT appid, name FROM steam_games WHERE price = ?", 0.0)
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["name"] != "Dota 2" {
		t.Errorf("expected Dota 2, got %v", rows[0]["name"])
	}
}

func TestExecuteQueryBadSQL(t *testing.T) {
	store := newTestDB(t)
	if _, err := store.ExecuteQuery(context.Background(), "SELECT FROM nothing"); err == nil {
		t.Error("expected error for invalid SQL")
	}
}

func TestSearchGames(t *testing.T) {
	store := newTestDB(t)
	rows, err := store.SearchGames(context.Background(), "life", 10)
	if err != nil {
		t.Fatalf("SearchGames: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 match, got %d", len(rows))
	}
	if rows[0]["name"] != "Half-Life 2" {
		t.Errorf("expected Half-Life 2, got %v", rows[0]["name"])
	}
}

func TestSearchGamesOrdering(t *testing.T) {
	store := newTestDB(t)
	rows, err := store.SearchGames(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("SearchGames: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("limit not applied, got %d rows", len(rows))
	}
	if rows[0]["name"] != "Dota 2" {
		t.Errorf("results should be ordered by positive_ratings, got %v first", rows[0]["name"])
	}
}

func TestGenreCounts(t *testing.T) {
	store := newTestDB(t)
	counts, err := store.GenreCounts(context.Background(), 10)
	if err != nil {
		t.Fatalf("GenreCounts: %v", err)
	}

	got := map[string]int{}
	for _, c := range counts {
		got[c.Genre] = c.Count
	}
	// "Action" appears in every row, split out of the semicolon lists
	if got["Action"] != 4 {
		t.Errorf("expected Action count 4, got %d", got["Action"])
	}
	if got["Strategy"] != 1 {
		t.Errorf("expected Strategy count 1, got %d", got["Strategy"])
	}
	if len(counts) > 0 && counts[0].Genre != "Action" {
		t.Errorf("largest bucket should come first, got %q", counts[0].Genre)
	}
}

func TestGenreCountsLimit(t *testing.T) {
	store := newTestDB(t)
	counts, err := store.GenreCounts(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenreCounts: %v", err)
	}
	if len(counts) != 1 {
		t.Errorf("expected 1 bucket, got %d", len(counts))
	}
}
