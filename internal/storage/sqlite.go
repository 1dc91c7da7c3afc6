// Package storage provides SQLite-based persistence for finished runs and the
// levels they visited. Uses the pure-Go modernc.org/sqlite driver to avoid
// CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Run is one finished session.
type Run struct {
	ID         int64
	GameID     string
	Player     string
	Reward     float64
	Levels     int
	EndReason  string
	DurationMS int64
	CreatedAt  time.Time
}

// Duration returns the run length.
func (r Run) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// LevelVisit is one level played during a run.
type LevelVisit struct {
	RunID   int64
	LevelID string
	Seq     int
	Reward  float64
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			reward REAL NOT NULL DEFAULT 0,
			levels INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_game_id ON runs(game_id);
		CREATE INDEX IF NOT EXISTS idx_runs_best ON runs(game_id, reward DESC);

		CREATE TABLE IF NOT EXISTS level_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			level_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			reward REAL NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_level_visits_run ON level_visits(run_id);
		CREATE INDEX IF NOT EXISTS idx_level_visits_level ON level_visits(level_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a run and the levels it visited in one transaction.
// Returns the ID of the inserted run.
func (s *Store) SaveRun(run Run, visits []LevelVisit) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (game_id, player, reward, levels, end_reason, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.GameID, run.Player, run.Reward, run.Levels, run.EndReason, run.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for i, v := range visits {
		if _, err := tx.Exec(
			"INSERT INTO level_visits (run_id, level_id, seq, reward) VALUES (?, ?, ?, ?)",
			id, v.LevelID, i, v.Reward,
		); err != nil {
			return 0, fmt.Errorf("storage: cannot save level visit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return id, nil
}

// BestRuns retrieves the top N runs for the given game.
// Results are ordered by reward descending, then by duration ascending.
func (s *Store) BestRuns(gameID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryRuns(
		`SELECT id, game_id, player, reward, levels, end_reason, duration_ms, created_at
		 FROM runs
		 WHERE game_id = ?
		 ORDER BY reward DESC, duration_ms ASC
		 LIMIT ?`,
		gameID, limit,
	)
}

// RecentRuns retrieves the most recent runs across all games.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRuns(
		`SELECT id, game_id, player, reward, levels, end_reason, duration_ms, created_at
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// RunByID retrieves a run by its ID. Returns nil when it does not exist.
func (s *Store) RunByID(id int64) (*Run, error) {
	runs, err := s.queryRuns(
		`SELECT id, game_id, player, reward, levels, end_reason, duration_ms, created_at
		 FROM runs WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func (s *Store) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt any
		if err := rows.Scan(&r.ID, &r.GameID, &r.Player, &r.Reward, &r.Levels,
			&r.EndReason, &r.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// RunLevels retrieves the levels of a run in the order they were played.
func (s *Store) RunLevels(runID int64) ([]LevelVisit, error) {
	rows, err := s.db.Query(
		`SELECT run_id, level_id, seq, reward
		 FROM level_visits
		 WHERE run_id = ?
		 ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query level visits: %w", err)
	}
	defer rows.Close()

	var visits []LevelVisit
	for rows.Next() {
		var v LevelVisit
		if err := rows.Scan(&v.RunID, &v.LevelID, &v.Seq, &v.Reward); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return visits, nil
}

// ClearRuns deletes all runs of the given game and their level visits.
func (s *Store) ClearRuns(gameID string) error {
	if _, err := s.db.Exec(
		"DELETE FROM level_visits WHERE run_id IN (SELECT id FROM runs WHERE game_id = ?)",
		gameID,
	); err != nil {
		return fmt.Errorf("storage: cannot clear level visits: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs WHERE game_id = ?", gameID); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID     string
	RunsCount  int
	BestReward float64
	AvgReward  float64
	Completed  int
	LastPlayed time.Time
}

// GetGameStats retrieves aggregated statistics for a specific game.
func (s *Store) GetGameStats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(reward), 0), COALESCE(AVG(reward), 0),
		        COALESCE(SUM(CASE WHEN end_reason = 'completed' THEN 1 ELSE 0 END), 0)
		 FROM runs WHERE game_id = ?`,
		gameID,
	).Scan(&stats.RunsCount, &stats.BestReward, &stats.AvgReward, &stats.Completed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM runs WHERE game_id = ? ORDER BY created_at DESC LIMIT 1`,
		gameID,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// LevelStats is how often a level was reached and the best reward earned in it.
type LevelStats struct {
	LevelID    string
	Visits     int
	BestReward float64
}

// GetLevelStats aggregates level visits of a game, most visited first.
func (s *Store) GetLevelStats(gameID string) ([]LevelStats, error) {
	rows, err := s.db.Query(
		`SELECT v.level_id, COUNT(*), MAX(v.reward)
		 FROM level_visits v JOIN runs r ON r.id = v.run_id
		 WHERE r.game_id = ?
		 GROUP BY v.level_id
		 ORDER BY COUNT(*) DESC, v.level_id`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	defer rows.Close()

	var stats []LevelStats
	for rows.Next() {
		var ls LevelStats
		if err := rows.Scan(&ls.LevelID, &ls.Visits, &ls.BestReward); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		stats = append(stats, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
