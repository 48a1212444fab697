package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

func sampleRecord(name, address string) entity.AmenityRecord {
	budget := decimal.NewFromInt(59_000_000)
	return entity.AmenityRecord{
		ID:          uuid.New(),
		Name:        name,
		Address:     address,
		District:    "Центральный",
		Category:    "сквер",
		Status:      "активный",
		Coordinates: entity.Coordinates{Lat: 48.7080, Lng: 44.5133},
		Budget:      &budget,
		Photos:      []string{},
		SourceLabel: "Объекты благоустройства 2024",
	}
}

func openTestSQLite(t *testing.T) AmenityRepository {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "catalog.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo, err := NewSQLiteAmenityRepository(ctx, db, nil)
	require.NoError(t, err)
	return repo
}

func TestSQLiteAmenityCreateAndConflict(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)
	require.NoError(t, repo.Ping(ctx))

	rec := sampleRecord("Сквер по ул. Мира", "ул. Мира")
	id, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID.String(), id)

	exists, err := repo.Exists(ctx, "  СКВЕР по ул. мира", "УЛ. МИРА ")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.Create(ctx, sampleRecord("сквер по ул. мира", "ул. Мира"))
	require.Error(t, err)
	assert.True(t, common.IsConflict(err))

	exists, err = repo.Exists(ctx, "Парк Победы", "ул. Мира")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteAmenityListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := openTestSQLite(t)

	for _, rec := range []entity.AmenityRecord{
		sampleRecord("Сквер по ул. Мира", "ул. Мира"),
		sampleRecord("Парк Победы", "пр. Ленина"),
		sampleRecord("Набережная", "наб. 62-й Армии"),
	} {
		_, err := repo.Create(ctx, rec)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, entity.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Набережная", all[0].Name)

	page, err := repo.List(ctx, entity.CatalogFilter{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	found, err := repo.List(ctx, entity.CatalogFilter{Search: "Ленина", District: "Центральный"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Парк Победы", found[0].Name)

	require.NoError(t, repo.Delete(ctx, found[0].ID))
	err = repo.Delete(ctx, found[0].ID)
	require.Error(t, err)
	assert.False(t, common.IsConflict(err))

	all, err = repo.List(ctx, entity.CatalogFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPostgresAmenityCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := sampleRecord("Сквер по ул. Мира", "ул. Мира")
	mock.ExpectExec(`INSERT INTO "amenities"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO "amenities"`).WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewPostgresAmenityRepository(mock, nil)
	id, err := repo.Create(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID.String(), id)

	_, err = repo.Create(context.Background(), rec)
	require.Error(t, err)
	assert.True(t, common.IsConflict(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAmenityExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT "id" FROM "amenities"`).
		WithArgs(entity.DedupKey("Парк Победы", "пр. Ленина")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("a1"))
	mock.ExpectQuery(`SELECT "id" FROM "amenities"`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	repo := NewPostgresAmenityRepository(mock, nil)
	ok, err := repo.Exists(context.Background(), "Парк Победы", "пр. Ленина")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), "Сквер", "ул. Мира")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAmenityListAndDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM "amenities" WHERE "search_key" LIKE`).
		WillReturnRows(pgxmock.NewRows(catalogObjectColumns).
			AddRow("a1", "Парк Победы", "пр. Ленина", "Центральный", "парк", "активный"))
	mock.ExpectExec(`DELETE FROM "amenities"`).WithArgs("a1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM "amenities"`).WithArgs("a1").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresAmenityRepository(mock, nil)
	objs, err := repo.List(context.Background(), entity.CatalogFilter{Search: "победы"})
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "парк", objs[0].Category)

	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.Error(t, repo.Delete(context.Background(), "a1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigratePostgres(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS amenities`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE UNIQUE INDEX`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	require.NoError(t, MigratePostgres(context.Background(), mock))
	require.NoError(t, mock.ExpectationsWereMet())
}
