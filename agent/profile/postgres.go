package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// profileRow maps the single-row table holding the profile document.
type profileRow struct {
	bun.BaseModel `bun:"table:business_profiles"`

	ID        int64     `bun:"id,pk"`
	Document  *Profile  `bun:"document,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// PostgresStore persists the profile document in a jsonb column. Exactly one
// row (id=1) is maintained via upsert.
type PostgresStore struct {
	db      *bun.DB
	timeout time.Duration
}

func NewPostgresStore(cfg PostgresConfig) *PostgresStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	return &PostgresStore{
		db:      bun.NewDB(sqldb, pgdialect.New()),
		timeout: cfg.Timeout,
	}
}

// Init creates the backing table if it does not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.NewCreateTable().
		Model((*profileRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create profile table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := new(profileRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", 1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if row.Document == nil {
		return nil, ErrNotFound
	}
	return row.Document, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *Profile) error {
	if p == nil {
		return ErrNilProfile
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := &profileRow{ID: 1, Document: p, UpdatedAt: time.Now()}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
