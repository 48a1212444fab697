// Package fetch retrieves listing pages and source documents. Its HTTP client
// is private to the fetcher; the relaxed TLS mode never leaks into
// http.DefaultTransport.
package fetch

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
)

// maxPageBytes bounds listing pages read into memory.
const maxPageBytes = 16 << 20

type Config struct {
	DownloadDir        string
	Timeout            time.Duration // document download, default 30s
	PageTimeout        time.Duration // listing page, default 10s
	UserAgent          string
	InsecureSkipVerify bool // the source site presents an invalid certificate chain
}

type Fetcher struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewFetcher(cfg Config, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 10 * time.Second
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = os.TempDir()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = common.DefaultUserAgent
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // scoped to the source site fetcher
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("fetch.tls.relaxed", "reason", "source site certificate chain is invalid")
	}
	return &Fetcher{cfg: cfg, client: &http.Client{Transport: tr}, logger: logger}
}

// Get returns the body of a page. Failures are *common.FetchError.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.PageTimeout)
	defer cancel()
	start := time.Now()

	resp, err := f.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		f.logger.Error("fetch.page.read_failed", "url", rawURL, "error", err)
		return nil, common.NewFetchError(rawURL, err)
	}
	f.logger.Info("fetch.page.ok", "url", rawURL, "bytes", len(body), "elapsed_ms", time.Since(start).Milliseconds())
	return body, nil
}

// Download streams a document into DownloadDir and returns the local path.
// An empty filename is derived from the URL and prefixed with a short URL
// digest, so same-named files from different directories do not overwrite
// each other. The partial file is removed on any failure.
func (f *Fetcher) Download(ctx context.Context, rawURL, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()
	start := time.Now()

	if filename == "" {
		filename = LocalName(rawURL)
	}
	if err := os.MkdirAll(f.cfg.DownloadDir, 0o755); err != nil {
		return "", common.WrapError(err, "create download dir")
	}
	dest := filepath.Join(f.cfg.DownloadDir, filepath.Base(filename))

	resp, err := f.do(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(f.cfg.DownloadDir, ".download-*")
	if err != nil {
		return "", common.WrapError(err, "create temp file")
	}
	n, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		if copyErr != nil {
			f.logger.Error("fetch.download.stream_failed", "url", rawURL, "bytes", n, "error", copyErr)
			return "", common.NewFetchError(rawURL, copyErr)
		}
		return "", common.WrapError(closeErr, "close download")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return "", common.WrapError(err, "move download")
	}

	f.logger.Info("fetch.download.ok",
		"url", rawURL,
		"path", dest,
		"bytes", n,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return dest, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &common.FetchError{URL: rawURL, Kind: common.FetchNetwork, Cause: err}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		fe := common.NewFetchError(rawURL, err)
		f.logger.Error("fetch.request.failed", "url", rawURL, "kind", fe.Kind, "error", err)
		return nil, fe
	}
	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		f.logger.Warn("fetch.request.status", "url", rawURL, "status", resp.StatusCode)
		return nil, common.NewStatusError(rawURL, resp.StatusCode)
	}
	return resp, nil
}

// LocalName is the download name for rawURL: the first 8 hex digits of the
// URL's SHA-256, an underscore, then FilenameFromURL.
func LocalName(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:4]) + "_" + FilenameFromURL(rawURL)
}

// FilenameFromURL derives a safe local file name from the URL path, keeping
// Cyrillic letters. Falls back to a random name with a .pdf extension.
func FilenameFromURL(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
		if s, err := url.PathUnescape(name); err == nil {
			name = s
		}
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "._")
	if name == "" || filepath.Ext(name) == "" {
		return uuid.NewString() + ".pdf"
	}
	return name
}

// IsFetchError reports whether err came from the network layer rather than parsing.
func IsFetchError(err error) bool {
	var fe *common.FetchError
	return errors.As(err, &fe)
}
