package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Ensure SQLiteStore implements model.CompanyStore.
var _ model.CompanyStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the company catalog in a SQLite database. Key metrics,
// strengths and challenges are stored as JSON columns.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// companies table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS companies (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		industry    TEXT NOT NULL,
		location    TEXT NOT NULL,
		revenue     TEXT NOT NULL DEFAULT '',
		employees   INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		key_metrics TEXT,
		strengths   TEXT NOT NULL DEFAULT '[]',
		challenges  TEXT NOT NULL DEFAULT '[]',
		added_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating companies table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

const selectCompany = `SELECT id, name, industry, location, revenue, employees, description,
	key_metrics, strengths, challenges FROM companies`

// List returns every company in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx, selectCompany+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	return companies, nil
}

// Get returns the company with the given ID or model.ErrCompanyNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Company, error) {
	row := s.db.QueryRowContext(ctx, selectCompany+" WHERE id = ?", id)
	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, fmt.Errorf("company %s: %w", id, model.ErrCompanyNotFound)
	}
	return c, err
}

// Add validates c, assigns an ID when it has none, and inserts it.
func (s *SQLiteStore) Add(ctx context.Context, c model.Company) (model.Company, error) {
	c, err := prepare(c)
	if err != nil {
		return model.Company{}, err
	}

	var metrics sql.NullString
	if c.KeyMetrics != nil {
		b, err := json.Marshal(c.KeyMetrics)
		if err != nil {
			return model.Company{}, fmt.Errorf("encoding key metrics for %s: %w", c.Name, err)
		}
		metrics = sql.NullString{String: string(b), Valid: true}
	}
	strengths, err := json.Marshal(c.Strengths)
	if err != nil {
		return model.Company{}, fmt.Errorf("encoding strengths for %s: %w", c.Name, err)
	}
	challenges, err := json.Marshal(c.Challenges)
	if err != nil {
		return model.Company{}, fmt.Errorf("encoding challenges for %s: %w", c.Name, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, industry, location, revenue, employees, description, key_metrics, strengths, challenges)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Industry, c.Location, c.Revenue, c.Employees, c.Description,
		metrics, string(strengths), string(challenges),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.Company{}, fmt.Errorf("company %s already exists", c.ID)
		}
		return model.Company{}, fmt.Errorf("adding company %s: %w", c.Name, err)
	}
	return c, nil
}

// Delete removes the company with the given ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM companies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting company %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting company %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("company %s: %w", id, model.ErrCompanyNotFound)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(row scanner) (model.Company, error) {
	var (
		c          model.Company
		metrics    sql.NullString
		strengths  string
		challenges string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Industry, &c.Location, &c.Revenue, &c.Employees,
		&c.Description, &metrics, &strengths, &challenges)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, err
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("scanning company: %w", err)
	}

	if metrics.Valid && metrics.String != "" {
		c.KeyMetrics = &model.KeyMetrics{}
		if err := json.Unmarshal([]byte(metrics.String), c.KeyMetrics); err != nil {
			return model.Company{}, fmt.Errorf("decoding key metrics for %s: %w", c.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(strengths), &c.Strengths); err != nil {
		return model.Company{}, fmt.Errorf("decoding strengths for %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(challenges), &c.Challenges); err != nil {
		return model.Company{}, fmt.Errorf("decoding challenges for %s: %w", c.ID, err)
	}
	return c, nil
}
