// FILE: internal/storage/schema.go
package storage

import "time"

// MatchRecord represents a row in the matches table
type MatchRecord struct {
	MatchID      string    `db:"match_id"`
	InitialFEN   string    `db:"initial_fen"`
	Level        int       `db:"level"`
	StartTimeUTC time.Time `db:"start_time_utc"`
	Result       string    `db:"result"`
}

// MoveRecord represents a row in the moves table, one rated ply
type MoveRecord struct {
	MoveID       int64     `db:"move_id"`
	MatchID      string    `db:"match_id"`
	Ply          int       `db:"ply"`
	MoveUCI      string    `db:"move_uci"`
	SAN          string    `db:"san"`
	PlayerColor  string    `db:"player_color"` // "w" or "b"
	Rating       string    `db:"rating"`
	DeltaCP      int       `db:"delta_cp"`
	FENAfterMove string    `db:"fen_after_move"`
	MoveTimeUTC  time.Time `db:"move_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS matches (
	match_id TEXT PRIMARY KEY,
	initial_fen TEXT NOT NULL,
	level INTEGER NOT NULL DEFAULT 3,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	result TEXT NOT NULL DEFAULT 'ongoing'
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id TEXT NOT NULL,
	ply INTEGER NOT NULL,
	move_uci TEXT NOT NULL,
	san TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	rating TEXT NOT NULL,
	delta_cp INTEGER NOT NULL DEFAULT 0,
	fen_after_move TEXT NOT NULL,
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (match_id) REFERENCES matches(match_id) ON DELETE CASCADE,
	UNIQUE(match_id, ply)
);

CREATE INDEX IF NOT EXISTS idx_moves_match_id ON moves(match_id);
CREATE INDEX IF NOT EXISTS idx_matches_start_time ON matches(start_time_utc);
`
