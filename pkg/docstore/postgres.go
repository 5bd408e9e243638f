package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// documentRow is the single physical table behind every collection.
type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	Collection string         `bun:"collection,pk"`
	ID         string         `bun:"id,pk"`
	Data       map[string]any `bun:"data,type:jsonb"`
	UpdatedAt  time.Time      `bun:"updated_at,nullzero,default:now()"`
}

// PostgresStore implements Store on a JSONB documents table.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresStore{db: db}, nil
}

// Init creates the documents table if it does not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*documentRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Collection(name string) Collection {
	return &postgresCollection{db: s.db, name: name}
}

type postgresCollection struct {
	db   *bun.DB
	name string
}

func (c *postgresCollection) Add(ctx context.Context, doc map[string]any) (string, error) {
	id := uuid.NewString()
	if err := c.Set(ctx, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (c *postgresCollection) Set(ctx context.Context, id string, doc map[string]any) error {
	row := &documentRow{
		Collection: c.name,
		ID:         id,
		Data:       doc,
		UpdatedAt:  time.Now().UTC(),
	}
	_, err := c.db.NewInsert().
		Model(row).
		On("CONFLICT (collection, id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set document %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *postgresCollection) Get(ctx context.Context, id string) (map[string]any, error) {
	row := new(documentRow)
	err := c.db.NewSelect().
		Model(row).
		Where("collection = ?", c.name).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocNotFound
		}
		return nil, fmt.Errorf("get document %s/%s: %w", c.name, id, err)
	}
	return row.Data, nil
}

func (c *postgresCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	doc, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		doc[k] = v
	}
	return c.Set(ctx, id, doc)
}

func (c *postgresCollection) Delete(ctx context.Context, id string) error {
	res, err := c.db.NewDelete().
		Model((*documentRow)(nil)).
		Where("collection = ?", c.name).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete document %s/%s: %w", c.name, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDocNotFound
	}
	return nil
}

func (c *postgresCollection) Query(ctx context.Context, q Query) ([]Document, error) {
	sel := c.db.NewSelect().
		Model((*documentRow)(nil)).
		Where("collection = ?", c.name)

	for _, f := range q.Filters {
		op, err := sqlOp(f.Op)
		if err != nil {
			return nil, err
		}
		switch v := f.Value.(type) {
		case time.Time:
			sel = sel.Where(fmt.Sprintf("(d.data->>?)::timestamptz %s ?", op), f.Field, v)
		case int, int32, int64, float32, float64:
			sel = sel.Where(fmt.Sprintf("(d.data->>?)::numeric %s ?", op), f.Field, v)
		default:
			sel = sel.Where(fmt.Sprintf("d.data->>? %s ?", op), f.Field, fmt.Sprint(v))
		}
	}

	for _, o := range q.OrderBy {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		if o.Numeric {
			sel = sel.OrderExpr(fmt.Sprintf("(d.data->>?)::numeric %s", dir), o.Field)
		} else {
			sel = sel.OrderExpr(fmt.Sprintf("d.data->>? %s", dir), o.Field)
		}
	}

	var rows []documentRow
	if err := sel.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("query collection %s: %w", c.name, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{ID: row.ID, Data: row.Data})
	}
	return docs, nil
}

func sqlOp(op Op) (string, error) {
	switch op {
	case OpEq, OpNotEq, OpGte, OpLte, OpLt, OpGt:
		return string(op), nil
	default:
		return "", fmt.Errorf("unsupported filter op %q", op)
	}
}
