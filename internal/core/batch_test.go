package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	"github.com/joseph-ayodele/amenity-parser/internal/metrics"
)

type stubDiscoverer struct {
	docs []entity.SourceDocument
	err  error
}

func (s stubDiscoverer) Discover(context.Context, string) ([]entity.SourceDocument, error) {
	return s.docs, s.err
}

// scriptedProcessor returns one record per document unless the label is
// listed in fail or noBoundary.
type scriptedProcessor struct {
	mu         sync.Mutex
	seen       []string
	fail       map[string]bool
	noBoundary map[string]bool
}

func (s *scriptedProcessor) ProcessDocument(_ context.Context, doc entity.SourceDocument, _ bool) DocumentResult {
	s.mu.Lock()
	s.seen = append(s.seen, doc.Label())
	s.mu.Unlock()
	res := DocumentResult{Document: doc}
	switch {
	case s.fail[doc.Label()]:
		res.Err = &common.FetchError{URL: doc.URL, Kind: common.FetchStatus, StatusCode: 404}
	case s.noBoundary[doc.Label()]:
		res.NoBoundary = true
	default:
		res.Records = []entity.AmenityRecord{{Name: "объект " + doc.Label(), SourceLabel: doc.Label()}}
		res.Rejected = 1
	}
	return res
}

type captureExporter struct {
	records []entity.AmenityRecord
	report  entity.RunReport
}

func (c *captureExporter) Export(_ context.Context, records []entity.AmenityRecord, report entity.RunReport) ([]string, error) {
	c.records = records
	c.report = report
	return []string{"out/amenities.json"}, nil
}

type stubUploader struct {
	report entity.UploadReport
	err    error
	calls  int
}

func (s *stubUploader) Upload(_ context.Context, records []entity.AmenityRecord) (entity.UploadReport, error) {
	s.calls++
	if s.err != nil {
		return entity.UploadReport{}, s.err
	}
	r := s.report
	r.Success = len(records)
	return r, nil
}

func docs(labels ...string) []entity.SourceDocument {
	out := make([]entity.SourceDocument, 0, len(labels))
	for _, l := range labels {
		out = append(out, entity.SourceDocument{URL: fmt.Sprintf("https://www.volgograd.ru/upload/%s.pdf", l), Title: l})
	}
	return out
}

func TestBatchRunMergesInDiscoveryOrder(t *testing.T) {
	discovered := append(docs("a", "b", "c", "d", "e"),
		entity.SourceDocument{URL: "https://www.volgograd.ru/upload/plan.docx", Title: "plan"},
		entity.SourceDocument{URL: "https://www.volgograd.ru/upload/a.pdf", Title: "a-dup"},
	)
	proc := &scriptedProcessor{fail: map[string]bool{"b": true}, noBoundary: map[string]bool{"d": true}}
	exp := &captureExporter{}
	up := &stubUploader{}
	m := metrics.New(nil)

	b := NewBatch(nil, BatchConfig{Workers: 3}, stubDiscoverer{docs: discovered}, proc, exp, up, m)
	report, err := b.Run(context.Background(), Options{ListingURL: "https://www.volgograd.ru/list/", Upload: true})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.Documents)
	assert.Equal(t, 1, report.DocumentsFailed)
	assert.Equal(t, 1, report.NoBoundary)
	assert.Equal(t, 3, report.Extracted)
	assert.Equal(t, 3, report.Rejected)
	assert.Equal(t, []string{"out/amenities.json"}, report.Artifacts)
	require.NotNil(t, report.Upload)
	assert.Equal(t, 3, report.Upload.Success)

	require.Len(t, exp.records, 3)
	assert.Equal(t, "a", exp.records[0].SourceLabel)
	assert.Equal(t, "c", exp.records[1].SourceLabel)
	assert.Equal(t, "e", exp.records[2].SourceLabel)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, proc.seen)
}

func TestBatchRunExplicitURLsWithoutUpload(t *testing.T) {
	proc := &scriptedProcessor{}
	up := &stubUploader{}
	b := NewBatch(nil, BatchConfig{}, nil, proc, nil, up, nil)

	report, err := b.Run(context.Background(), Options{
		URLs:      []string{"https://www.volgograd.ru/upload/%D0%BF%D0%B0%D1%80%D0%BA.pdf"},
		Documents: []entity.SourceDocument{{Title: "local", LocalPath: "/data/local.pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Extracted)
	assert.Nil(t, report.Upload)
	assert.Zero(t, up.calls)
	assert.Equal(t, []string{"парк", "local"}, proc.seen)
}

func TestBatchRunDiscoveryFailure(t *testing.T) {
	fetchErr := &common.FetchError{URL: "https://www.volgograd.ru/list/", Kind: common.FetchTLS, Cause: errors.New("x509")}
	b := NewBatch(nil, BatchConfig{}, stubDiscoverer{err: fetchErr}, &scriptedProcessor{}, nil, nil, nil)

	_, err := b.Run(context.Background(), Options{ListingURL: "https://www.volgograd.ru/list/"})
	var fe *common.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, common.FetchTLS, fe.Kind)
}

func TestBatchRunCatalogUnavailableKeepsExports(t *testing.T) {
	exp := &captureExporter{}
	up := &stubUploader{err: fmt.Errorf("%w: dial tcp", common.ErrCatalogUnavailable)}
	b := NewBatch(nil, BatchConfig{}, nil, &scriptedProcessor{}, exp, up, nil)

	report, err := b.Run(context.Background(), Options{URLs: []string{"https://x/a.pdf"}, Upload: true})
	require.ErrorIs(t, err, common.ErrCatalogUnavailable)
	assert.Equal(t, []string{"out/amenities.json"}, report.Artifacts)
	assert.Len(t, exp.records, 1)
	assert.Nil(t, report.Upload)
}
