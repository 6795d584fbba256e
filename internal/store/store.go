// Package store provides SQLite persistence for simulations and player progress.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/budgetsim/internal/model"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a simulation does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the budgetsim database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Filter narrows simulation listings. Zero values match everything.
type Filter struct {
	Category   model.Category
	Difficulty model.Difficulty
}

// SaveSimulation inserts a simulation with its expenses and fills in the
// assigned ids.
func (s *Store) SaveSimulation(sim *model.Simulation, sourcePath string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.Exec(`INSERT INTO simulations
		(question, category, difficulty, monthly_income, source_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sim.Question, string(sim.Category), string(sim.Difficulty),
		sim.MonthlyIncome.String(), sourcePath, now,
	)
	if err != nil {
		return fmt.Errorf("inserting simulation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i := range sim.Expenses {
		e := &sim.Expenses[i]
		res, err := tx.Exec(`INSERT INTO expenses
			(simulation_id, position, name, amount, essential, feedback)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, e.Name, e.Amount.String(), boolInt(e.Essential), e.Feedback,
		)
		if err != nil {
			return fmt.Errorf("inserting expense %q: %w", e.Name, err)
		}
		eid, err := res.LastInsertId()
		if err != nil {
			return err
		}
		e.ID = int(eid)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	sim.ID = int(id)
	return nil
}

// QuestionExists reports whether a simulation with this exact question is stored.
func (s *Store) QuestionExists(question string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM simulations WHERE question = ?", question).Scan(&n)
	return n > 0, err
}

// GetSimulation loads a simulation and its expenses in display order.
func (s *Store) GetSimulation(id int) (*model.Simulation, error) {
	var sim model.Simulation
	var cat, diff, income string
	err := s.db.QueryRow(`SELECT id, question, category, difficulty, monthly_income
		FROM simulations WHERE id = ?`, id).Scan(&sim.ID, &sim.Question, &cat, &diff, &income)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("simulation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	sim.Category = model.Category(cat)
	sim.Difficulty = model.Difficulty(diff)
	if sim.MonthlyIncome, err = decimal.NewFromString(income); err != nil {
		return nil, fmt.Errorf("simulation %d income: %w", id, err)
	}

	rows, err := s.db.Query(`SELECT id, name, amount, essential, feedback
		FROM expenses WHERE simulation_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var e model.Expense
		var amount string
		var essential int
		if err := rows.Scan(&e.ID, &e.Name, &amount, &essential, &e.Feedback); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("expense %d amount: %w", e.ID, err)
		}
		e.Essential = essential != 0
		sim.Expenses = append(sim.Expenses, e)
	}
	return &sim, rows.Err()
}

// ListSimulations returns summaries matching the filter, ordered by id.
func (s *Store) ListSimulations(f Filter) ([]model.SimulationSummary, error) {
	q := `SELECT s.id, s.question, s.category, s.difficulty, s.monthly_income,
		(SELECT COUNT(*) FROM expenses e WHERE e.simulation_id = s.id)
		FROM simulations s WHERE 1=1`
	var args []any
	if f.Category != "" {
		q += " AND s.category = ?"
		args = append(args, string(f.Category))
	}
	if f.Difficulty != "" {
		q += " AND s.difficulty = ?"
		args = append(args, string(f.Difficulty))
	}
	q += " ORDER BY s.id"

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.SimulationSummary
	for rows.Next() {
		var sum model.SimulationSummary
		var cat, diff, income string
		if err := rows.Scan(&sum.ID, &sum.Question, &cat, &diff, &income, &sum.ExpenseCount); err != nil {
			return nil, err
		}
		sum.Category = model.Category(cat)
		sum.Difficulty = model.Difficulty(diff)
		var err error
		if sum.MonthlyIncome, err = decimal.NewFromString(income); err != nil {
			return nil, fmt.Errorf("simulation %d income: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// SimulationCount returns the number of stored simulations.
func (s *Store) SimulationCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM simulations").Scan(&count)
	return count, err
}

// CompletedIDs returns the simulations a player has completed in a category.
func (s *Store) CompletedIDs(playerID string, cat model.Category) (map[int]bool, error) {
	rows, err := s.db.Query(`SELECT simulation_id FROM progress
		WHERE player_id = ? AND category = ?`, playerID, string(cat))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	done := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		done[id] = true
	}
	return done, rows.Err()
}

// RecordCompletion stores a completion unless the player already has one for
// the simulation. created reports whether a new row was written.
func (s *Store) RecordCompletion(c model.Completion) (bool, error) {
	res, err := s.db.Exec(`INSERT OR IGNORE INTO progress
		(player_id, simulation_id, category, difficulty, xp, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.PlayerID, c.SimulationID, string(c.Category), string(c.Difficulty),
		c.XP, c.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// IsCompleted reports whether a player has completed a simulation.
func (s *Store) IsCompleted(playerID string, simulationID int) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM progress WHERE player_id = ? AND simulation_id = ?`,
		playerID, simulationID).Scan(&n)
	return n > 0, err
}

// LoadCompletions returns every completion for a player.
func (s *Store) LoadCompletions(playerID string) ([]model.Completion, error) {
	rows, err := s.db.Query(`SELECT player_id, simulation_id, category, difficulty, xp, completed_at
		FROM progress WHERE player_id = ? ORDER BY completed_at`, playerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Completion
	for rows.Next() {
		var c model.Completion
		var cat, diff, at string
		if err := rows.Scan(&c.PlayerID, &c.SimulationID, &cat, &diff, &c.XP, &at); err != nil {
			return nil, err
		}
		c.Category = model.Category(cat)
		c.Difficulty = model.Difficulty(diff)
		c.CompletedAt, _ = time.Parse(time.RFC3339, at)
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecordAttempt stores one graded submission.
func (s *Store) RecordAttempt(a model.Attempt) error {
	_, err := s.db.Exec(`INSERT INTO attempts
		(id, player_id, simulation_id, category, difficulty, successful, total_selected, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PlayerID, a.SimulationID, string(a.Category), string(a.Difficulty),
		boolInt(a.Successful), a.TotalSelected, a.SubmittedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// LoadAttempts returns a player's attempts, oldest first.
func (s *Store) LoadAttempts(playerID string) ([]model.Attempt, error) {
	rows, err := s.db.Query(`SELECT id, player_id, simulation_id, category, difficulty,
		successful, total_selected, submitted_at
		FROM attempts WHERE player_id = ? ORDER BY submitted_at`, playerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var cat, diff, at string
		var ok int
		if err := rows.Scan(&a.ID, &a.PlayerID, &a.SimulationID, &cat, &diff, &ok, &a.TotalSelected, &at); err != nil {
			return nil, err
		}
		a.Category = model.Category(cat)
		a.Difficulty = model.Difficulty(diff)
		a.Successful = ok != 0
		a.SubmittedAt, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, a)
	}
	return out, rows.Err()
}

// FileInfo holds the tracked mtime and size for an imported catalog file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all imported catalogs.
func (s *Store) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// TrackFile records the mtime and size of an imported catalog.
func (s *Store) TrackFile(path string, fi FileInfo) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, path, fi.MtimeNs, fi.SizeBytes)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
