package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

type fakeStore struct {
	mu        sync.Mutex
	pingErr   error
	objects   map[string]entity.CatalogObject
	createErr map[string]error
	deleteErr map[string]error
	creates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:   map[string]entity.CatalogObject{},
		createErr: map[string]error{},
		deleteErr: map[string]error{},
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) Create(_ context.Context, rec entity.AmenityRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if err := f.createErr[rec.Name]; err != nil {
		return "", err
	}
	id := rec.ID.String()
	f.objects[id] = entity.CatalogObject{ID: id, Name: rec.Name, Address: rec.Address}
	return id, nil
}

func (f *fakeStore) Exists(_ context.Context, name, address string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.objects {
		if entity.DedupKey(o.Name, o.Address) == entity.DedupKey(name, address) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) List(context.Context, entity.CatalogFilter) ([]entity.CatalogObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.CatalogObject, 0, len(f.objects))
	for _, o := range f.objects {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	delete(f.objects, id)
	return nil
}

func rec(name, address string) entity.AmenityRecord {
	return entity.AmenityRecord{ID: uuid.New(), Name: name, Address: address}
}

func TestUploadSkipsExisting(t *testing.T) {
	store := newFakeStore()
	store.objects["x"] = entity.CatalogObject{ID: "x", Name: "Сквер по ул. Мира", Address: "ул. Мира"}

	u := NewUploader(store, Config{}, nil)
	report, err := u.Upload(context.Background(), []entity.AmenityRecord{
		rec("сквер по ул. мира", "УЛ. МИРА"),
		rec("Парк Победы", "пр. Ленина"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, entity.UploadSkipped, report.Outcomes[0].Status)
	assert.Equal(t, 1, store.creates)
}

func TestUploadConflictIsSkipNotFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr["Парк Победы"] = &common.StoreError{Op: "create", Conflict: true}
	store.createErr["Набережная"] = &common.StoreError{Op: "create", StatusCode: 500, Detail: "Ошибка создания объекта"}

	u := NewUploader(store, Config{}, nil)
	report, err := u.Upload(context.Background(), []entity.AmenityRecord{
		rec("Парк Победы", "пр. Ленина"),
		rec("Набережная", "наб. 62-й Армии"),
		rec("Сквер", "ул. Мира"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Outcomes[1].Error, "Ошибка создания объекта")
	assert.NotEmpty(t, report.Outcomes[2].ID)
}

func TestUploadPrecheckAborts(t *testing.T) {
	store := newFakeStore()
	store.pingErr = errors.New("connection refused")

	u := NewUploader(store, Config{}, nil)
	report, err := u.Upload(context.Background(), []entity.AmenityRecord{rec("Парк Победы", "пр. Ленина")})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
	assert.Zero(t, store.creates)
	assert.Empty(t, report.Outcomes)
}

func TestUploadPacesRequests(t *testing.T) {
	store := newFakeStore()
	u := NewUploader(store, Config{Delay: 20 * time.Millisecond}, nil)

	start := time.Now()
	report, err := u.Upload(context.Background(), []entity.AmenityRecord{
		rec("a", "1"), rec("b", "2"), rec("c", "3"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Success)
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestClear(t *testing.T) {
	store := newFakeStore()
	for _, id := range []string{"1", "2", "3"} {
		store.objects[id] = entity.CatalogObject{ID: id, Name: "obj " + id}
	}
	store.deleteErr["2"] = errors.New("boom")

	report, err := Clear(context.Background(), store, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, ClearReport{Listed: 3, Deleted: 2, Failed: 1}, report)
	assert.Len(t, store.objects, 1)

	empty := newFakeStore()
	report, err = Clear(context.Background(), empty, 0, nil)
	require.NoError(t, err)
	assert.Zero(t, report.Listed)
}
