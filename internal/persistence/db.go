// Package persistence provides the SQLite chronicle: an append-only
// record of colony events, achievement unlocks, and periodic statistics.
// Colony state itself is never restored from disk; each run starts fresh.
package persistence

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/waggle/internal/engine"
)

// DB wraps a SQLite connection for the colony chronicle.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection for the health endpoint.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS achievements (
		id TEXT PRIMARY KEY,
		bee_id TEXT NOT NULL,
		bee_name TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		rarity TEXT NOT NULL,
		unlocked_at REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stats_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		population INTEGER NOT NULL,
		avg_happiness REAL NOT NULL,
		avg_energy REAL NOT NULL,
		cultural_diversity REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_achievements_bee ON achievements(bee_id);
	CREATE INDEX IF NOT EXISTS idx_stats_tick ON stats_history(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// AppendEvents appends events to the chronicle.
func (db *DB) AppendEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, sim_time, description, category) VALUES (?, ?, ?, ?)",
			e.Tick, e.SimTime, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AppendUnlocks records achievement unlocks. Duplicate ids are ignored so
// a retried flush never double-writes.
func (db *DB) AppendUnlocks(unlocks []engine.UnlockRecord) error {
	if len(unlocks) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range unlocks {
		_, err := tx.Exec(`INSERT OR IGNORE INTO achievements
			(id, bee_id, bee_name, type, title, description, rarity, unlocked_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			u.Record.ID, u.BeeID, u.BeeName, string(u.Record.Type),
			u.Record.Title, u.Record.Description, string(u.Record.Rarity),
			u.Record.UnlockedAt,
		)
		if err != nil {
			return fmt.Errorf("insert unlock %s: %w", u.Record.ID, err)
		}
	}

	return tx.Commit()
}

// AppendStats records one statistics sample.
func (db *DB) AppendStats(tick uint64, simTime float64, s engine.Stats) error {
	_, err := db.conn.Exec(`INSERT INTO stats_history
		(tick, sim_time, population, avg_happiness, avg_energy, cultural_diversity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tick, simTime, s.Population, s.AvgHappiness, s.AvgEnergy, s.CulturalDiversity,
	)
	return err
}

// RecentEvents returns the most recent N chronicled events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, sim_time, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// StatsSample is one row of the statistics history.
type StatsSample struct {
	Tick              uint64  `db:"tick" json:"tick"`
	SimTime           float64 `db:"sim_time" json:"sim_time"`
	Population        int     `db:"population" json:"population"`
	AvgHappiness      float64 `db:"avg_happiness" json:"avg_happiness"`
	AvgEnergy         float64 `db:"avg_energy" json:"avg_energy"`
	CulturalDiversity float64 `db:"cultural_diversity" json:"cultural_diversity"`
}

// LoadStatsHistory returns the most recent N statistics samples, oldest
// first.
func (db *DB) LoadStatsHistory(limit int) ([]StatsSample, error) {
	var samples []StatsSample
	err := db.conn.Select(&samples, `SELECT tick, sim_time, population,
		avg_happiness, avg_energy, cultural_diversity
		FROM stats_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}
