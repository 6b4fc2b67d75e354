package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	company_size TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	regions TEXT NOT NULL DEFAULT '[]',
	facilities_count INTEGER,
	revenue_usd REAL,
	production_units REAL,
	suppliers_count INTEGER,
	primary_data_share REAL,
	products_count INTEGER,
	bom_available INTEGER,
	internal_carbon_price REAL,
	sbti_committed INTEGER,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS assessments (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	industry TEXT NOT NULL,
	responses TEXT NOT NULL,
	carbon_score REAL,
	esg_score REAL,
	completed_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_user ON assessments(user_id, completed_at);

CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	assessment_id TEXT REFERENCES assessments(id) ON DELETE SET NULL,
	carbon_footprint REAL NOT NULL DEFAULT 0,
	esg_score REAL NOT NULL DEFAULT 0,
	ai_report TEXT,
	recommendations TEXT NOT NULL DEFAULT '[]',
	environmental_score REAL NOT NULL DEFAULT 0,
	social_score REAL NOT NULL DEFAULT 0,
	governance_score REAL NOT NULL DEFAULT 0,
	risk_level TEXT NOT NULL DEFAULT '',
	benchmark_position TEXT NOT NULL DEFAULT '',
	compliance_gaps TEXT NOT NULL DEFAULT '[]',
	quick_wins TEXT NOT NULL DEFAULT '[]',
	long_term_goals TEXT NOT NULL DEFAULT '[]',
	generated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id, generated_at);

CREATE TABLE IF NOT EXISTS deep_analytics (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	report_id TEXT REFERENCES reports(id) ON DELETE SET NULL,
	deep_report TEXT NOT NULL,
	scope1_emissions REAL,
	scope2_emissions REAL,
	scope3_emissions REAL,
	intensity_per_unit REAL,
	intensity_per_revenue REAL,
	renewables_share REAL,
	circularity_score REAL,
	engagement_index REAL,
	generated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deep_analytics_user ON deep_analytics(user_id, generated_at);
`

// Store persists users, assessments, reports and deep analytics in SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("Database ready", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// nullString maps "" to NULL for optional foreign keys.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scanner interface {
	Scan(dest ...any) error
}
