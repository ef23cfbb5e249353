package sections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitekit/internal/database"
)

// sectionRow is the storage shape shared by every per-type table. The table
// name itself is injected per query, so one model serves them all.
type sectionRow struct {
	bun.BaseModel `bun:"table:section_rows,alias:sr"`

	ID        uuid.UUID      `bun:",pk,type:uuid"`
	Data      map[string]any `bun:"data,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp"`
}

// BunStorage persists instances of one section type in its own table.
type BunStorage struct {
	db      *bun.DB
	table   string
	typeUID string
}

func NewBunStorage(db *bun.DB, table, typeUID string) *BunStorage {
	return &BunStorage{db: db, table: table, typeUID: typeUID}
}

// EnsureTable creates the per-type table when it does not exist yet. Wiring
// code calls this at registration time instead of shipping one migration per
// section type.
func (s *BunStorage) EnsureTable(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*sectionRow)(nil)).
		ModelTableExpr("?", bun.Ident(s.table)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create section table %s: %w", s.table, err)
	}
	return nil
}

func (s *BunStorage) Create(ctx context.Context, instance *Instance) (*Instance, error) {
	row := s.toRow(instance)
	_, err := database.From(ctx, s.db).NewInsert().
		Model(row).
		ModelTableExpr("? AS sr", bun.Ident(s.table)).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("insert section %s: %w", s.typeUID, err)
	}
	return s.toInstance(row), nil
}

func (s *BunStorage) Get(ctx context.Context, id uuid.UUID) (*Instance, error) {
	row := new(sectionRow)
	err := database.From(ctx, s.db).NewSelect().
		Model(row).
		ModelTableExpr("? AS sr", bun.Ident(s.table)).
		Where("sr.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "section", Key: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("select section %s: %w", s.typeUID, err)
	}
	return s.toInstance(row), nil
}

func (s *BunStorage) Update(ctx context.Context, instance *Instance) (*Instance, error) {
	row := s.toRow(instance)
	res, err := database.From(ctx, s.db).NewUpdate().
		Model(row).
		ModelTableExpr("? AS sr", bun.Ident(s.table)).
		Column("data", "updated_at").
		Where("sr.id = ?", row.ID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update section %s: %w", s.typeUID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, &NotFoundError{Resource: "section", Key: row.ID.String()}
	}
	return s.toInstance(row), nil
}

func (s *BunStorage) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := database.From(ctx, s.db).NewDelete().
		Model((*sectionRow)(nil)).
		ModelTableExpr("? AS sr", bun.Ident(s.table)).
		Where("sr.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete section %s: %w", s.typeUID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "section", Key: id.String()}
	}
	return nil
}

func (s *BunStorage) toRow(instance *Instance) *sectionRow {
	return &sectionRow{
		ID:        instance.ID,
		Data:      instance.Data,
		CreatedAt: instance.CreatedAt,
		UpdatedAt: instance.UpdatedAt,
	}
}

func (s *BunStorage) toInstance(row *sectionRow) *Instance {
	return &Instance{
		ID:        row.ID,
		Type:      s.typeUID,
		Data:      row.Data,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
