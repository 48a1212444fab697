package catalog

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

const (
	DefaultDescription = "Описание не указано"
	SourceTag          = "Парсер PDF volgograd.ru"
)

type Config struct {
	BaseURL            string
	APIKey             string
	RequestTimeout     time.Duration
	PingTimeout        time.Duration
	InsecureSkipVerify bool
}

// Client is the REST catalog backend.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 5 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // catalog host opt-in
	}
	return &Client{cfg: cfg, http: &http.Client{Transport: transport}, log: logger}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type objectPayload struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Address     string             `json:"address"`
	District    string             `json:"district"`
	Type        string             `json:"type"`
	Status      string             `json:"status"`
	Coordinates entity.Coordinates `json:"coordinates"`
	Photos      []string           `json:"photos"`
	YearBuilt   *int               `json:"yearBuilt"`
	Source      string             `json:"source"`
}

// StatCount is one group of the catalog statistics.
type StatCount struct {
	Key   string `json:"_id"`
	Count int    `json:"count"`
}

// Stats is the catalog-side summary returned by GET /api/objects/stats.
type Stats struct {
	Total      int         `json:"total"`
	ByDistrict []StatCount `json:"byDistrict"`
	ByType     []StatCount `json:"byType"`
	ByStatus   []StatCount `json:"byStatus"`
}

func toPayload(rec entity.AmenityRecord) objectPayload {
	p := objectPayload{
		Name:        rec.Name,
		Description: rec.Description,
		Address:     rec.Address,
		District:    rec.District,
		Type:        rec.Category,
		Status:      rec.Status,
		Coordinates: rec.Coordinates,
		Photos:      rec.Photos,
		Source:      SourceTag,
	}
	if strings.TrimSpace(p.Description) == "" {
		p.Description = DefaultDescription
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	if len(rec.EndDate) >= 4 {
		if y, err := strconv.Atoi(rec.EndDate[:4]); err == nil {
			p.YearBuilt = &y
		}
	}
	return p
}

// Ping checks the backend root answers 200 within the ping timeout.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "ping", http.MethodGet, "/", nil, c.cfg.PingTimeout)
	return err
}

func (c *Client) Create(ctx context.Context, rec entity.AmenityRecord) (string, error) {
	data, err := c.do(ctx, "create", http.MethodPost, "/api/objects", toPayload(rec), c.cfg.RequestTimeout)
	if err != nil {
		return "", err
	}
	var created struct {
		ID json.RawMessage `json:"id"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &created); err != nil {
			return "", &common.StoreError{Op: "create", Detail: "decode response", Cause: err}
		}
	}
	return strings.Trim(string(created.ID), `"`), nil
}

// Exists searches by name and compares name+address case-insensitively.
func (c *Client) Exists(ctx context.Context, name, address string) (bool, error) {
	objs, err := c.List(ctx, entity.CatalogFilter{Search: name, Limit: 10})
	if err != nil {
		return false, err
	}
	key := entity.DedupKey(name, address)
	for _, o := range objs {
		if entity.DedupKey(o.Name, o.Address) == key {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) List(ctx context.Context, f entity.CatalogFilter) ([]entity.CatalogObject, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.District != "" {
		q.Set("district", f.District)
	}
	if f.Category != "" {
		q.Set("type", f.Category)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	path := "/api/objects"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	data, err := c.do(ctx, "list", http.MethodGet, path, nil, c.cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	var objs []entity.CatalogObject
	if len(data) > 0 {
		if err := json.Unmarshal(data, &objs); err != nil {
			return nil, &common.StoreError{Op: "list", Detail: "decode response", Cause: err}
		}
	}
	return objs, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, "/api/objects/"+url.PathEscape(id), nil, c.cfg.PingTimeout)
	return err
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	data, err := c.do(ctx, "stats", http.MethodGet, "/api/objects/stats", nil, c.cfg.PingTimeout)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, &common.StoreError{Op: "stats", Detail: "decode response", Cause: err}
	}
	return st, nil
}

// do sends one request and returns the envelope's data member. Non-2xx
// responses become *common.StoreError carrying the backend's error text.
func (c *Client) do(ctx context.Context, op, method, path string, body any, timeout time.Duration) (json.RawMessage, error) {
	reqID := uuid.New().String()
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return nil, &common.StoreError{Op: op, Detail: "encode request", Cause: err}
		}
		reader = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, &common.StoreError{Op: op, Detail: "build request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("catalog.http.send_error", "req_id", reqID, "op", op, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, &common.StoreError{Op: op, Cause: err}
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.log.Warn("catalog.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("catalog.http.read_error", "req_id", reqID, "op", op, "status", resp.StatusCode, "bytes", len(raw), "error", err)
		return nil, &common.StoreError{Op: op, Detail: "read response", Cause: err}
	}
	c.log.Debug("catalog.http.response",
		"req_id", reqID,
		"op", op,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	var env envelope
	decoded := json.Unmarshal(raw, &env) == nil
	if resp.StatusCode/100 != 2 {
		detail := http.StatusText(resp.StatusCode)
		if decoded && env.Error != "" {
			detail = env.Error
		}
		return nil, &common.StoreError{Op: op, StatusCode: resp.StatusCode, Detail: detail}
	}
	if !decoded {
		// the backend root answers with a plain banner
		return nil, nil
	}
	if env.Error != "" && !env.Success {
		return nil, &common.StoreError{Op: op, StatusCode: resp.StatusCode, Detail: env.Error}
	}
	return env.Data, nil
}

var _ Store = (*Client)(nil)

func (s Stats) String() string {
	return fmt.Sprintf("total=%d districts=%d types=%d statuses=%d", s.Total, len(s.ByDistrict), len(s.ByType), len(s.ByStatus))
}
