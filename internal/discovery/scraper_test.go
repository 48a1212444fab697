package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/fetch"
)

const listing = `<html><body>
<ul>
  <li><a href="/upload/%D0%BF%D0%B0%D1%80%D0%BA%D0%B8.pdf">Перечень</a></li>
  <li><a href="docs/plan.pdf"><span>Объекты</span> <b>благоустройства</b> 2025</a></li>
  <li><a href="/upload/budget.pdf">Бюджет города</a></li>
  <li><a href="/news/blagoustroystvo">Благоустройство дворов</a></li>
  <li><a href="https://cdn.example.org/Сквер.XLSX" title="Сквер Гагарина"></a></li>
  <li><a href="/upload/%D0%BF%D0%B0%D1%80%D0%BA%D0%B8.pdf">дубль</a></li>
  <li><a href="mailto:info@volgograd.ru">благоустройство почта</a></li>
  <li><a href="#top">наверх</a></li>
</ul>
</body></html>`

func TestParseRules(t *testing.T) {
	s := NewScraper(Config{BaseURL: "https://www.volgograd.ru"}, nil, nil)
	docs, err := s.Parse([]byte(listing), "https://www.volgograd.ru")
	require.NoError(t, err)

	require.Len(t, docs, 4)

	assert.Equal(t, "https://www.volgograd.ru/upload/%D0%BF%D0%B0%D1%80%D0%BA%D0%B8.pdf", docs[0].URL)
	assert.Equal(t, "Перечень", docs[0].Title)

	assert.Equal(t, "https://www.volgograd.ru/docs/plan.pdf", docs[1].URL)
	assert.Equal(t, "Объекты благоустройства 2025", docs[1].Title)

	assert.Equal(t, "https://www.volgograd.ru/news/blagoustroystvo", docs[2].URL)

	assert.Equal(t, "Сквер Гагарина", docs[3].Title)
}

func TestDiscoverEmptyIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><a href="/about">О городе</a></html>`))
	}))
	defer srv.Close()

	s := NewScraper(Config{}, fetch.NewFetcher(fetch.Config{}, nil), nil)
	docs, err := s.Discover(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDiscoverResolvesAgainstPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<a href="files/skver.pdf">Сквер</a>`))
	}))
	defer srv.Close()

	s := NewScraper(Config{}, fetch.NewFetcher(fetch.Config{}, nil), nil)
	docs, err := s.Discover(context.Background(), srv.URL+"/projects/")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, srv.URL+"/projects/files/skver.pdf", docs[0].URL)
}

func TestDiscoverUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := NewScraper(Config{}, fetch.NewFetcher(fetch.Config{}, nil), nil)
	_, err := s.Discover(context.Background(), srv.URL)
	var fe *common.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, common.FetchStatus, fe.Kind)
}
