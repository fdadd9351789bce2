// FILE: internal/storage/storage.go
// Package storage archives finished and in-progress matches to
// SQLite. All writes are asynchronous; a failed write degrades the
// store and later writes are dropped rather than blocking play.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store handles SQLite database operations with async writes
type Store struct {
	db           *sql.DB
	path         string
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	log          *zap.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewStore creates a new storage instance with async writer
func NewStore(dataSourceName string, devMode bool, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL in development for better concurrency
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		db:        db,
		path:      dataSourceName,
		writeChan: make(chan func(*sql.Tx) error, 1000),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}

	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// writerLoop processes async write operations
func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain remaining writes with timeout
			deadline := time.After(2 * time.Second)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}

		case fn := <-s.writeChan:
			// Skip if already degraded
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

// executeWrite runs a transactional write operation
func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.log.Warn("storage degraded: begin failed", zap.Error(err))
		s.healthStatus.Store(false)
		return
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		s.log.Warn("storage degraded: write failed", zap.Error(err))
		s.healthStatus.Store(false)
		return
	}

	if err := tx.Commit(); err != nil {
		s.log.Warn("storage degraded: commit failed", zap.Error(err))
		s.healthStatus.Store(false)
	}
}

// enqueue submits a write, dropping it if the queue is full.
func (s *Store) enqueue(fn func(*sql.Tx) error) {
	if !s.healthStatus.Load() {
		return
	}
	select {
	case s.writeChan <- fn:
	default:
		s.log.Warn("storage write queue full, dropping record")
	}
}

// RecordNewMatch asynchronously records match creation
func (s *Store) RecordNewMatch(record MatchRecord) {
	s.enqueue(func(tx *sql.Tx) error {
		query := `INSERT INTO matches (match_id, initial_fen, level, start_time_utc)
			VALUES (?, ?, ?, ?)`
		_, err := tx.Exec(query,
			record.MatchID, record.InitialFEN, record.Level, record.StartTimeUTC)
		return err
	})
}

// RecordMove asynchronously records one rated ply
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueue(func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			match_id, ply, move_uci, san, player_color, rating, delta_cp, fen_after_move, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.Exec(query,
			record.MatchID, record.Ply, record.MoveUCI, record.SAN,
			record.PlayerColor, record.Rating, record.DeltaCP,
			record.FENAfterMove, record.MoveTimeUTC)
		return err
	})
}

// RecordResult asynchronously stores the terminal verdict
func (s *Store) RecordResult(matchID, result string) {
	s.enqueue(func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE matches SET result = ? WHERE match_id = ?`, result, matchID)
		return err
	})
}

// ClearMatchMoves asynchronously drops a match's ledger after restart
func (s *Store) ClearMatchMoves(matchID string) {
	s.enqueue(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM moves WHERE match_id = ?`, matchID); err != nil {
			return err
		}
		_, err := tx.Exec(`UPDATE matches SET result = 'ongoing' WHERE match_id = ?`, matchID)
		return err
	})
}

// IsHealthy returns the current health status
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// Close gracefully closes the database connection
func (s *Store) Close() error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.log.Warn("storage writer shutdown timeout, some writes may be lost")
	}

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}

// QueryMatches retrieves archived matches, newest first. An empty or
// "*" matchID returns all.
func (s *Store) QueryMatches(matchID string) ([]MatchRecord, error) {
	query := `SELECT match_id, initial_fen, level, start_time_utc, result
		FROM matches WHERE 1=1`

	var args []interface{}
	if matchID != "" && matchID != "*" {
		query += " AND match_id = ?"
		args = append(args, matchID)
	}
	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.MatchID, &m.InitialFEN, &m.Level, &m.StartTimeUTC, &m.Result); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return matches, nil
}

// QueryMoves retrieves the rated ledger of one match in play order.
func (s *Store) QueryMoves(matchID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT
		move_id, match_id, ply, move_uci, san, player_color, rating, delta_cp, fen_after_move, move_time_utc
		FROM moves WHERE match_id = ? ORDER BY ply`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.MoveID, &m.MatchID, &m.Ply, &m.MoveUCI, &m.SAN,
			&m.PlayerColor, &m.Rating, &m.DeltaCP, &m.FENAfterMove, &m.MoveTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return moves, nil
}
