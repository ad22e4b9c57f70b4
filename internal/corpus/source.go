package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"

	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/postgres"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/resilience"
)

// Source enumerates documents by name and reads their text. Read may be
// called concurrently.
type Source interface {
	Names(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) (string, error)
}

// FileSource reads documents from a directory tree. Document names are
// file paths.
type FileSource struct {
	Dir        string
	Extensions []string
	Limit      int
}

func (s *FileSource) Names(_ context.Context) ([]string, error) {
	return FindFiles(s.Dir, s.Extensions, s.Limit)
}

func (s *FileSource) Read(_ context.Context, name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", name, err)
	}
	return string(data), nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresSource reads documents from a table with text columns name and
// body:
//
//	CREATE TABLE documents (
//	    name TEXT PRIMARY KEY,
//	    body TEXT NOT NULL
//	);
type PostgresSource struct {
	db    *sql.DB
	table string
	limit int
}

func NewPostgresSource(client *postgres.Client, limit int) (*PostgresSource, error) {
	return newPostgresSource(client.DB, client.Table(), limit)
}

func newPostgresSource(db *sql.DB, table string, limit int) (*PostgresSource, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", apperrors.ErrInvalidInput, table)
	}
	return &PostgresSource{db: db, table: table, limit: limit}, nil
}

func (s *PostgresSource) Names(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, s.table)
	args := []any{}
	if s.limit > 0 {
		query += ` LIMIT $1`
		args = append(args, s.limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing documents: %v", apperrors.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning document name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PostgresSource) Read(ctx context.Context, name string) (string, error) {
	var body string
	query := fmt.Sprintf(`SELECT body FROM %s WHERE name = $1`, s.table)
	err := resilience.Retry(ctx, "postgres-read", resilience.RetryConfig{
		MaxAttempts: 3,
		Retryable: func(err error) bool {
			return !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, context.Canceled)
		},
	}, func() error {
		return s.db.QueryRowContext(ctx, query, name).Scan(&body)
	})
	if err != nil {
		return "", fmt.Errorf("reading document %q: %w", name, err)
	}
	return body, nil
}
