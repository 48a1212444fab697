package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
)

func pdfHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/missing.pdf":
		http.NotFound(w, r)
	case "/slow.pdf":
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	default:
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 " + r.Header.Get("User-Agent")))
	}
}

func TestDownloadRelaxedTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(pdfHandler))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(Config{DownloadDir: dir, InsecureSkipVerify: true, UserAgent: "amenity-test"}, nil)

	u := srv.URL + "/upload/%D0%BF%D0%B0%D1%80%D0%BA%D0%B8.pdf"
	p, err := f.Download(context.Background(), u, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, LocalName(u)), p)
	assert.True(t, strings.HasSuffix(p, "_парки.pdf"), p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 amenity-test", string(b))
}

func TestDownloadStrictTLSFails(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(pdfHandler))
	defer srv.Close()

	f := NewFetcher(Config{DownloadDir: t.TempDir()}, nil)
	_, err := f.Download(context.Background(), srv.URL+"/a.pdf", "")

	var fe *common.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, common.FetchTLS, fe.Kind)
	assert.NotSame(t, http.DefaultTransport, f.client.Transport)
}

func TestDownloadStatusAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(pdfHandler))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(Config{DownloadDir: dir, Timeout: 50 * time.Millisecond}, nil)

	_, err := f.Download(context.Background(), srv.URL+"/missing.pdf", "")
	var fe *common.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, common.FetchStatus, fe.Kind)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)

	_, err = f.Download(context.Background(), srv.URL+"/slow.pdf", "")
	require.Error(t, err)
	assert.True(t, common.IsTimeout(err))
	assert.True(t, IsFetchError(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadSameBasenameDifferentURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("content of " + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(Config{DownloadDir: dir}, nil)
	ctx := context.Background()

	p23, err := f.Download(ctx, srv.URL+"/2023/perechen.pdf", "")
	require.NoError(t, err)
	p24, err := f.Download(ctx, srv.URL+"/2024/perechen.pdf", "")
	require.NoError(t, err)
	require.NotEqual(t, p23, p24)

	b, err := os.ReadFile(p23)
	require.NoError(t, err)
	assert.Equal(t, "content of /2023/perechen.pdf", string(b))
	b, err = os.ReadFile(p24)
	require.NoError(t, err)
	assert.Equal(t, "content of /2024/perechen.pdf", string(b))

	again, err := f.Download(ctx, srv.URL+"/2023/perechen.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, p23, again)
}

func TestGetPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><a href=\"/x.pdf\">x</a></html>"))
	}))
	defer srv.Close()

	body, err := NewFetcher(Config{}, nil).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "x.pdf"))
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "ОБЪЕКТЫ_БЛАГОУСТРОЙСТВА_22.05.2025.pdf",
		FilenameFromURL("https://www.volgograd.ru/vo-project/!ОБЪЕКТЫ%20БЛАГОУСТРОЙСТВА%2022.05.2025.pdf"))
	assert.True(t, strings.HasSuffix(FilenameFromURL("https://www.volgograd.ru/"), ".pdf"))
	assert.True(t, strings.HasSuffix(FilenameFromURL("::bad"), ".pdf"))
}
