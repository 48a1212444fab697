package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

func record() entity.AmenityRecord {
	return entity.AmenityRecord{
		ID:          uuid.New(),
		Name:        "Сквер по ул. Мира",
		Address:     "ул. Мира",
		District:    "Центральный",
		Category:    "сквер",
		Status:      "активный",
		Coordinates: entity.Coordinates{Lat: 48.7080, Lng: 44.5133},
		EndDate:     "2024-11-30",
	}
}

func TestClientCreateSendsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/objects", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"obj-1","name":"Сквер по ул. Мира"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret"}, nil)
	id, err := c.Create(context.Background(), record())
	require.NoError(t, err)
	assert.Equal(t, "obj-1", id)

	assert.Equal(t, "Сквер по ул. Мира", got["name"])
	assert.Equal(t, DefaultDescription, got["description"])
	assert.Equal(t, "сквер", got["type"])
	assert.Equal(t, SourceTag, got["source"])
	assert.Equal(t, float64(2024), got["yearBuilt"])
	assert.Equal(t, []any{}, got["photos"])
}

func TestClientErrorStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/objects":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"success":false,"error":"Объект уже существует"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"Некорректные значения"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := c.Create(context.Background(), record())
	require.Error(t, err)
	assert.True(t, common.IsConflict(err))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	err = c.Delete(context.Background(), "x")
	require.Error(t, err)
	var se *common.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Некорректные значения", se.Detail)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestClientTruncatedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "512")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"da`))
		conn, _, err := http.NewResponseController(w).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		_ = conn.Close()
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := c.Create(context.Background(), record())
	require.Error(t, err)
	var se *common.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "read response", se.Detail)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestClientExistsAndList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/objects", r.URL.Path)
		q := r.URL.Query()
		if q.Get("search") != "" {
			assert.Equal(t, "10", q.Get("limit"))
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":"1","name":"СКВЕР ПО УЛ. МИРА","address":"ул. мира","district":"Центральный","type":"сквер","status":"активный"},
			{"id":"2","name":"Парк Победы","address":"пр. Ленина","district":"Центральный","type":"парк","status":"активный"}
		],"pagination":{"page":1,"limit":10,"total":2,"pages":1}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	ok, err := c.Exists(context.Background(), "Сквер по ул. Мира", "ул. Мира")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(context.Background(), "Сквер по ул. Мира", "пр. Ленина")
	require.NoError(t, err)
	assert.False(t, ok)

	objs, err := c.List(context.Background(), entity.CatalogFilter{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "парк", objs[1].Category)
}

func TestClientPingAndStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte("catalog api"))
		case "/api/objects/stats":
			_, _ = w.Write([]byte(`{"success":true,"data":{"total":3,"byDistrict":[{"_id":"Центральный","count":3}],"byType":[],"byStatus":[]}}`))
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, c.Ping(context.Background()))

	st, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	require.Len(t, st.ByDistrict, 1)
	assert.Equal(t, "Центральный", st.ByDistrict[0].Key)
}

func TestClientPingUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, PingTimeout: 20 * time.Millisecond}, nil)
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}
