package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT  NOT NULL,
    id         TEXT  NOT NULL,
    fields     JSONB NOT NULL DEFAULT '{}'::jsonb,
    PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection);
`

// PostgresStore persists document collections in a single JSONB table.
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *sqlx.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the documents table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, pgSchema); err != nil {
		return fmt.Errorf("ensure documents schema: %w", err)
	}
	return nil
}

// Collection returns a handle bound to one collection name.
func (s *PostgresStore) Collection(name string) Collection {
	return &pgCollection{db: s.db, name: name}
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type pgCollection struct {
	db   *sqlx.DB
	name string
}

func (c *pgCollection) List(ctx context.Context, limit int) ([]Document, error) {
	query := `SELECT id, fields FROM documents WHERE collection = $1 LIMIT $2`
	rows, err := c.db.QueryContext(ctx, query, c.name, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	return c.scanDocuments(rows)
}

func (c *pgCollection) ListOrdered(ctx context.Context, orderBy string, dir SortDirection, limit int) ([]Document, error) {
	query := fmt.Sprintf(
		`SELECT id, fields FROM documents WHERE collection = $1 ORDER BY fields ->> $2 %s NULLS LAST LIMIT $3`,
		sqlDirection(dir),
	)
	rows, err := c.db.QueryContext(ctx, query, c.name, orderBy, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list %s ordered by %s: %w", c.name, orderBy, err)
	}
	return c.scanDocuments(rows)
}

func (c *pgCollection) Get(ctx context.Context, id string) (*Document, error) {
	var raw []byte
	query := `SELECT fields FROM documents WHERE collection = $1 AND id = $2`
	if err := c.db.QueryRowContext(ctx, query, c.name, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", c.name, id, err)
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", c.name, id, err)
	}
	return &Document{ID: id, Fields: fields}, nil
}

func (c *pgCollection) Create(ctx context.Context, id string, fields map[string]interface{}) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("create %s/%s: %w", c.name, id, err)
	}
	query := `INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)`
	if _, err := c.db.ExecContext(ctx, query, c.name, id, raw); err != nil {
		return "", fmt.Errorf("create %s/%s: %w", c.name, id, err)
	}
	return id, nil
}

func (c *pgCollection) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	query := `UPDATE documents SET fields = fields || $3::jsonb WHERE collection = $1 AND id = $2`
	res, err := c.db.ExecContext(ctx, query, c.name, id, raw)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *pgCollection) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := c.db.ExecContext(ctx, query, c.name, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *pgCollection) scanDocuments(rows *sql.Rows) ([]Document, error) {
	defer rows.Close() //nolint:errcheck
	docs := make([]Document, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", c.name, err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", c.name, err)
	}
	return docs, nil
}

func decodeFields(raw []byte) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}

func sqlDirection(dir SortDirection) string {
	if dir == Ascending {
		return "ASC"
	}
	return "DESC"
}
