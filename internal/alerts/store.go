package alerts

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Rule is a subscription: evaluate this ticker for this email address.
type Rule struct {
	ID      int64
	Email   string
	Ticker  string
	Enabled bool
}

// State is what the evaluator remembers between runs for one (email, ticker)
// pair, so it can alert on changes rather than levels.
type State struct {
	Email           string
	Ticker          string
	LastRegime      string
	LastTrendBucket string
	LastDecay       string
	LastSentAt      *time.Time
}

// Store persists alert rules and evaluator state in SQLite.
type Store struct {
	db    *sql.DB
	mu    sync.Mutex
	clock func() time.Time
}

// NewStore opens (or creates) the SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the evaluator can write while API reads are in flight.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, clock: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alert_rules (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			email      TEXT NOT NULL,
			ticker     TEXT NOT NULL,
			enabled    INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			UNIQUE(email, ticker)
		)`,
		`CREATE TABLE IF NOT EXISTS alert_state (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			email             TEXT NOT NULL,
			ticker            TEXT NOT NULL,
			last_regime       TEXT,
			last_trend_bucket TEXT,
			last_decay        TEXT,
			last_sent_at      INTEGER,
			created_at        INTEGER NOT NULL,
			updated_at        INTEGER NOT NULL,
			UNIQUE(email, ticker)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// UpsertRule creates or updates a rule for the (email, ticker) pair.
func (s *Store) UpsertRule(email, ticker string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().Unix()
	_, err := s.db.Exec(`INSERT INTO alert_rules (email, ticker, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email, ticker) DO UPDATE SET enabled = excluded.enabled, updated_at = excluded.updated_at`,
		email, ticker, boolToInt(enabled), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}
	return nil
}

// Rules returns all rules, or only the enabled ones.
func (s *Store) Rules(enabledOnly bool) ([]Rule, error) {
	q := "SELECT id, email, ticker, enabled FROM alert_rules"
	if enabledOnly {
		q += " WHERE enabled = 1"
	}
	q += " ORDER BY id"

	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// RulesForEmail returns every rule registered for one email address.
func (s *Store) RulesForEmail(email string) ([]Rule, error) {
	rows, err := s.db.Query(
		"SELECT id, email, ticker, enabled FROM alert_rules WHERE email = ? ORDER BY id", email)
	if err != nil {
		return nil, fmt.Errorf("query rules for email: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// DeleteRule removes the rule and its evaluator state.
func (s *Store) DeleteRule(email, ticker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM alert_rules WHERE email = ? AND ticker = ?", email, ticker); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM alert_state WHERE email = ? AND ticker = ?", email, ticker); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// GetState returns the remembered state for the pair, or nil if none exists.
func (s *Store) GetState(email, ticker string) (*State, error) {
	var (
		st       State
		lastSent sql.NullInt64
	)
	err := s.db.QueryRow(`SELECT email, ticker,
			COALESCE(last_regime, ''), COALESCE(last_trend_bucket, ''), COALESCE(last_decay, ''),
			last_sent_at
		FROM alert_state WHERE email = ? AND ticker = ?`, email, ticker).
		Scan(&st.Email, &st.Ticker, &st.LastRegime, &st.LastTrendBucket, &st.LastDecay, &lastSent)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	if lastSent.Valid {
		t := time.Unix(lastSent.Int64, 0)
		st.LastSentAt = &t
	}
	return &st, nil
}

// UpsertState stores the latest observed signals for the pair, preserving
// last_sent_at.
func (s *Store) UpsertState(email, ticker, regime, bucket, decay string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().Unix()
	_, err := s.db.Exec(`INSERT INTO alert_state
			(email, ticker, last_regime, last_trend_bucket, last_decay, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email, ticker) DO UPDATE SET
			last_regime = excluded.last_regime,
			last_trend_bucket = excluded.last_trend_bucket,
			last_decay = excluded.last_decay,
			updated_at = excluded.updated_at`,
		email, ticker, regime, bucket, decay, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

// UpdateLastSent stamps the time an alert was last delivered for the pair.
func (s *Store) UpdateLastSent(email, ticker string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE alert_state SET last_sent_at = ?, updated_at = ? WHERE email = ? AND ticker = ?",
		at.Unix(), s.clock().Unix(), email, ticker,
	)
	if err != nil {
		return fmt.Errorf("update last sent: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func scanRules(rows *sql.Rows) ([]Rule, error) {
	var rules []Rule
	for rows.Next() {
		var (
			r       Rule
			enabled int
		)
		if err := rows.Scan(&r.ID, &r.Email, &r.Ticker, &enabled); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.Enabled = enabled != 0
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
