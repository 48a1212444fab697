package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

const amenitiesTable = "amenities"

const amenityColumnsDDL = `
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		district TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		budget TEXT,
		contractor TEXT NOT NULL DEFAULT '',
		customer TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		source_label TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL DEFAULT '',
		object_number INTEGER NOT NULL DEFAULT 0,
		region TEXT NOT NULL DEFAULT '',
		status_detailed TEXT NOT NULL DEFAULT '',
		area_sqm TEXT,
		photo_hint BOOLEAN NOT NULL DEFAULT FALSE,
		map_hint BOOLEAN NOT NULL DEFAULT FALSE,
		dedup_key TEXT NOT NULL,
		search_key TEXT NOT NULL DEFAULT ''`

// PostgresAmenitiesDDL creates the catalog table. Budgets are stored as exact
// decimal strings.
var PostgresAmenitiesDDL = []string{
	`CREATE TABLE IF NOT EXISTS amenities (
		id TEXT PRIMARY KEY,` + amenityColumnsDDL + `,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_amenities_dedup ON amenities(dedup_key);`,
}

var sqliteAmenitiesDDL = []string{
	`CREATE TABLE IF NOT EXISTS amenities (
		id TEXT PRIMARY KEY,` + amenityColumnsDDL + `,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_amenities_dedup ON amenities(dedup_key);`,
}

var catalogObjectColumns = []string{"id", "name", "address", "district", "category", "status"}

// AmenityRepository is a catalog store backed by a database. The dedup key
// (lower-cased name and address) is unique, so a second insert of the same
// pair fails with a conflict StoreError.
type AmenityRepository interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, rec entity.AmenityRecord) (string, error)
	Exists(ctx context.Context, name, address string) (bool, error)
	List(ctx context.Context, filter entity.CatalogFilter) ([]entity.CatalogObject, error)
	Delete(ctx context.Context, id string) error
}

// PgxPool is the part of *pgxpool.Pool the store uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

func amenityInsert(b *entsql.DialectBuilder, rec entity.AmenityRecord) (string, []any) {
	var budget, area any
	if rec.Budget != nil {
		budget = rec.Budget.String()
	}
	if rec.AreaSqM != nil {
		area = rec.AreaSqM.String()
	}
	return b.Insert(amenitiesTable).
		Columns(
			"id", "name", "address", "district", "category", "status", "description", "lat", "lng",
			"budget", "contractor", "customer", "start_date", "end_date", "source_label", "source_url",
			"object_number", "region", "status_detailed", "area_sqm", "photo_hint", "map_hint", "dedup_key", "search_key",
		).
		Values(
			rec.ID.String(), rec.Name, rec.Address, rec.District, rec.Category, rec.Status, rec.Description,
			rec.Coordinates.Lat, rec.Coordinates.Lng,
			budget, rec.Contractor, rec.Customer, rec.StartDate, rec.EndDate, rec.SourceLabel, rec.SourceURL,
			rec.ObjectNumber, rec.Region, rec.StatusDetailed, area, rec.PhotoHint, rec.MapHint,
			entity.DedupKey(rec.Name, rec.Address), searchKey(rec),
		).
		Query()
}

// searchKey is folded in Go: SQLite's lower() only handles ASCII.
func searchKey(rec entity.AmenityRecord) string {
	return strings.ToLower(rec.Name + " " + rec.Address)
}

func amenityExists(b *entsql.DialectBuilder, name, address string) (string, []any) {
	return b.Select("id").
		From(b.Table(amenitiesTable)).
		Where(entsql.EQ("dedup_key", entity.DedupKey(name, address))).
		Limit(1).
		Query()
}

func amenityList(b *entsql.DialectBuilder, f entity.CatalogFilter) (string, []any) {
	sel := b.Select(catalogObjectColumns...).From(b.Table(amenitiesTable))
	var preds []*entsql.Predicate
	if s := strings.TrimSpace(f.Search); s != "" {
		preds = append(preds, entsql.Contains("search_key", strings.ToLower(s)))
	}
	if f.District != "" {
		preds = append(preds, entsql.EQ("district", f.District))
	}
	if f.Category != "" {
		preds = append(preds, entsql.EQ("category", f.Category))
	}
	if f.Status != "" {
		preds = append(preds, entsql.EQ("status", f.Status))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	sel.OrderBy("name").Limit(limit)
	if f.Page > 1 {
		sel.Offset((f.Page - 1) * limit)
	}
	return sel.Query()
}

func amenityDelete(b *entsql.DialectBuilder, id string) (string, []any) {
	return b.Delete(amenitiesTable).Where(entsql.EQ("id", id)).Query()
}

type postgresAmenityRepo struct {
	pool PgxPool
	b    *entsql.DialectBuilder
	log  *slog.Logger
}

func NewPostgresAmenityRepository(pool PgxPool, log *slog.Logger) AmenityRepository {
	if log == nil {
		log = slog.Default()
	}
	return &postgresAmenityRepo{pool: pool, b: entsql.Dialect(dialect.Postgres), log: log}
}

// MigratePostgres applies PostgresAmenitiesDDL.
func MigratePostgres(ctx context.Context, pool PgxPool) error {
	for _, stmt := range PostgresAmenitiesDDL {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return common.WrapError(common.ErrDatabase, "migrate amenities: "+err.Error())
		}
	}
	return nil
}

func (r *postgresAmenityRepo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return &common.StoreError{Op: "ping", Cause: err}
	}
	return nil
}

func (r *postgresAmenityRepo) Create(ctx context.Context, rec entity.AmenityRecord) (string, error) {
	q, args := amenityInsert(r.b, rec)
	if _, err := r.pool.Exec(ctx, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", &common.StoreError{Op: "create", Conflict: true, Detail: rec.Name}
		}
		r.log.Error("amenity insert failed", "name", rec.Name, "err", err)
		return "", &common.StoreError{Op: "create", Cause: err}
	}
	r.log.Debug("amenity inserted", "id", rec.ID, "name", rec.Name)
	return rec.ID.String(), nil
}

func (r *postgresAmenityRepo) Exists(ctx context.Context, name, address string) (bool, error) {
	q, args := amenityExists(r.b, name, address)
	var id string
	err := r.pool.QueryRow(ctx, q, args...).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	case err != nil:
		return false, &common.StoreError{Op: "exists", Cause: err}
	}
	return true, nil
}

func (r *postgresAmenityRepo) List(ctx context.Context, filter entity.CatalogFilter) ([]entity.CatalogObject, error) {
	q, args := amenityList(r.b, filter)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, &common.StoreError{Op: "list", Cause: err}
	}
	defer rows.Close()
	var out []entity.CatalogObject
	for rows.Next() {
		var o entity.CatalogObject
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.District, &o.Category, &o.Status); err != nil {
			return nil, &common.StoreError{Op: "list", Cause: err}
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &common.StoreError{Op: "list", Cause: err}
	}
	return out, nil
}

func (r *postgresAmenityRepo) Delete(ctx context.Context, id string) error {
	q, args := amenityDelete(r.b, id)
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return &common.StoreError{Op: "delete", Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &common.StoreError{Op: "delete", StatusCode: 404, Detail: id}
	}
	return nil
}

type sqliteAmenityRepo struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	log *slog.Logger
}

// NewSQLiteAmenityRepository migrates the amenities table and returns the store.
func NewSQLiteAmenityRepository(ctx context.Context, db *sql.DB, log *slog.Logger) (AmenityRepository, error) {
	if log == nil {
		log = slog.Default()
	}
	for _, stmt := range sqliteAmenitiesDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, common.WrapError(common.ErrDatabase, "migrate amenities: "+err.Error())
		}
	}
	return &sqliteAmenityRepo{db: db, b: entsql.Dialect(dialect.SQLite), log: log}, nil
}

func (r *sqliteAmenityRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &common.StoreError{Op: "ping", Cause: err}
	}
	return nil
}

func (r *sqliteAmenityRepo) Create(ctx context.Context, rec entity.AmenityRecord) (string, error) {
	q, args := amenityInsert(r.b, rec)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", &common.StoreError{Op: "create", Conflict: true, Detail: rec.Name}
		}
		r.log.Error("amenity insert failed", "name", rec.Name, "err", err)
		return "", &common.StoreError{Op: "create", Cause: err}
	}
	r.log.Debug("amenity inserted", "id", rec.ID, "name", rec.Name)
	return rec.ID.String(), nil
}

func (r *sqliteAmenityRepo) Exists(ctx context.Context, name, address string) (bool, error) {
	q, args := amenityExists(r.b, name, address)
	var id string
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, &common.StoreError{Op: "exists", Cause: err}
	}
	return true, nil
}

func (r *sqliteAmenityRepo) List(ctx context.Context, filter entity.CatalogFilter) ([]entity.CatalogObject, error) {
	q, args := amenityList(r.b, filter)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &common.StoreError{Op: "list", Cause: err}
	}
	defer rows.Close()
	var out []entity.CatalogObject
	for rows.Next() {
		var o entity.CatalogObject
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.District, &o.Category, &o.Status); err != nil {
			return nil, &common.StoreError{Op: "list", Cause: err}
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &common.StoreError{Op: "list", Cause: err}
	}
	return out, nil
}

func (r *sqliteAmenityRepo) Delete(ctx context.Context, id string) error {
	q, args := amenityDelete(r.b, id)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return &common.StoreError{Op: "delete", Cause: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &common.StoreError{Op: "delete", StatusCode: 404, Detail: id}
	}
	return nil
}
