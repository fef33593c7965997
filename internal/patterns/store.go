// Package patterns persists readiness-loop outcomes so later runs can
// see which synthesis strategies worked for which kinds of task.
package patterns

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kwhitfield/quorum/pkg/models"
)

// Outcome is one recorded production run.
type Outcome struct {
	ID         string
	TaskID     string
	Complexity models.Complexity
	Tier       models.ProductionTier
	Strategy   models.VotingStrategy
	Readiness  float64
	Ready      bool
	Iterations int
	CreatedAt  time.Time
}

// StrategyStat aggregates recorded outcomes per strategy.
type StrategyStat struct {
	Strategy     models.VotingStrategy
	Uses         int
	AvgReadiness float64
	ReadyRate    float64
}

// Store provides SQLite-backed storage for outcomes.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultDBPath returns the path to the global outcomes database.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "quorum", "quorum.db")
}

// NewStore opens the outcomes database at the given path, creating
// parent directories and applying migrations. WAL mode is enabled for
// concurrent reads.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Outcomes},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

const migrationV1Outcomes = `
CREATE TABLE IF NOT EXISTS outcomes (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	complexity TEXT NOT NULL,
	tier TEXT NOT NULL,
	strategy TEXT NOT NULL,
	readiness REAL NOT NULL DEFAULT 0.0,
	ready INTEGER NOT NULL DEFAULT 0,
	iterations INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_complexity ON outcomes(complexity);
CREATE INDEX IF NOT EXISTS idx_outcomes_strategy ON outcomes(strategy);
`

// Insert stores one outcome. A missing id or timestamp is filled in.
func (s *Store) Insert(o Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO outcomes (id, task_id, complexity, tier, strategy, readiness, ready, iterations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.TaskID, string(o.Complexity), string(o.Tier), string(o.Strategy),
		o.Readiness, boolToInt(o.Ready), o.Iterations, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// TopStrategies returns the strategies that produced the highest
// average readiness for tasks of the given complexity, best first.
func (s *Store) TopStrategies(complexity models.Complexity, limit int) ([]StrategyStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(`
		SELECT strategy, COUNT(*), AVG(readiness), AVG(ready)
		FROM outcomes
		WHERE complexity = ?
		GROUP BY strategy
		ORDER BY AVG(readiness) DESC
		LIMIT ?`,
		string(complexity), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query strategies: %w", err)
	}
	defer rows.Close()

	var stats []StrategyStat
	for rows.Next() {
		var st StrategyStat
		var strategy string
		if err := rows.Scan(&strategy, &st.Uses, &st.AvgReadiness, &st.ReadyRate); err != nil {
			return nil, fmt.Errorf("scan strategy row: %w", err)
		}
		st.Strategy = models.VotingStrategy(strategy)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Count returns the number of recorded outcomes.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM outcomes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count outcomes: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
