// Package discovery finds candidate source documents on a listing page.
package discovery

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/joseph-ayodele/amenity-parser/constants"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// DefaultDomainKeywords accept a link on its visible text alone, whatever it points at.
var DefaultDomainKeywords = []string{"благоустройств", "общественн"}

type Config struct {
	BaseURL        string   // relative links resolve against it; the page URL when empty
	Keywords       []string // matched in link text or path of document links
	DomainKeywords []string
}

// PageGetter is satisfied by *fetch.Fetcher.
type PageGetter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Scraper struct {
	cfg    Config
	pages  PageGetter
	logger *slog.Logger
}

func NewScraper(cfg Config, pages PageGetter, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = common.DefaultKeywords
	}
	if len(cfg.DomainKeywords) == 0 {
		cfg.DomainKeywords = DefaultDomainKeywords
	}
	cfg.Keywords = lowerAll(cfg.Keywords)
	cfg.DomainKeywords = lowerAll(cfg.DomainKeywords)
	return &Scraper{cfg: cfg, pages: pages, logger: logger}
}

// Discover fetches pageURL and returns matching links in page order, first
// occurrence of each absolute URL only. No match is an empty result, not an error.
func (s *Scraper) Discover(ctx context.Context, pageURL string) ([]entity.SourceDocument, error) {
	start := time.Now()
	body, err := s.pages.Get(ctx, pageURL)
	if err != nil {
		s.logger.Error("discovery.page.failed", "url", pageURL, "error", err)
		return nil, err
	}
	base := s.cfg.BaseURL
	if base == "" {
		base = pageURL
	}
	docs, err := s.Parse(body, base)
	if err != nil {
		return nil, err
	}
	s.logger.Info("discovery.done", "url", pageURL, "documents", len(docs), "elapsed_ms", time.Since(start).Milliseconds())
	return docs, nil
}

// Parse scans an HTML page for document links.
func (s *Scraper) Parse(page []byte, baseURL string) ([]entity.SourceDocument, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, common.WrapError(err, "parse listing page")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, common.WrapError(common.ErrInvalidInput, "base url "+baseURL)
	}

	var (
		out  []entity.SourceDocument
		seen = map[string]struct{}{}
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			if doc, ok := s.match(n, base); ok {
				if _, dup := seen[doc.URL]; !dup {
					seen[doc.URL] = struct{}{}
					out = append(out, doc)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out, nil
}

func (s *Scraper) match(a *html.Node, base *url.URL) (entity.SourceDocument, bool) {
	href := strings.TrimSpace(attr(a, "href"))
	if href == "" || strings.HasPrefix(href, "#") {
		return entity.SourceDocument{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		s.logger.Debug("discovery.link.bad_href", "href", href, "error", err)
		return entity.SourceDocument{}, false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return entity.SourceDocument{}, false
	}

	text := collapse(textOf(a))
	lowerText := strings.ToLower(text)
	filePath := abs.Path
	lowerPath := strings.ToLower(filePath)
	_, isDoc := constants.DocumentExtensions[constants.NormalizeExt(path.Ext(filePath))]

	keep := (isDoc && (containsAny(lowerText, s.cfg.Keywords) || containsAny(lowerPath, s.cfg.Keywords))) ||
		containsAny(lowerText, s.cfg.DomainKeywords)
	if !keep {
		return entity.SourceDocument{}, false
	}

	title := text
	if title == "" {
		title = collapse(attr(a, "title"))
	}
	if title == "" {
		base := path.Base(filePath)
		title = strings.TrimSuffix(base, path.Ext(base))
	}
	return entity.SourceDocument{URL: abs.String(), Title: title}, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
