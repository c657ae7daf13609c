package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
)

const defaultDirectoryBaseURL = "https://www.yellowpages.com.au"

// DirectoryConfig configures the business-directory source.
type DirectoryConfig struct {
	BaseURL           string // overridable for tests
	RequestsPerMinute int    // default: 10
}

// DirectorySource scrapes public business-directory listing pages. It is a
// best-effort secondary source: listings carry no email, so most records
// dedup on (company, location).
type DirectorySource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewDirectorySource creates a new directory source
func NewDirectorySource(cfg DirectoryConfig, log logger.Logger) *DirectorySource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultDirectoryBaseURL
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 10
	}

	return &DirectorySource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		logger:  log,
	}
}

// Name identifies the source
func (d *DirectorySource) Name() string { return string(models.SourceBusinessDirectory) }

// Search fetches one listings page per configured location and extracts
// business entries from the markup.
func (d *DirectorySource) Search(ctx context.Context, criteria Criteria) (*Result, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, domain.NewTransientError("directory request cancelled", err)
	}

	keyword := strings.Join(criteria.Keywords, " ")
	if keyword == "" && len(criteria.Industries) > 0 {
		keyword = criteria.Industries[0]
	}

	location := ""
	if len(criteria.Locations) > 0 {
		location = criteria.Locations[0]
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("clue", keyword)
	q.Set("locationClue", location)
	q.Set("page", fmt.Sprintf("%d", page))
	searchURL := d.baseURL + "/search/listings?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; leadgen/1.0)")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, domain.NewTransientError("directory request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewRateLimitedError("directory")
	case resp.StatusCode >= 500:
		return nil, domain.NewTransientError(fmt.Sprintf("directory server error: %d", resp.StatusCode), nil)
	default:
		return nil, domain.NewFatalError(fmt.Sprintf("directory unexpected status: %d", resp.StatusCode), nil)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, domain.NewTransientError("directory page parse failed", err)
	}

	records := parseListings(doc, location)
	d.logger.Debug("directory search completed", "keyword", keyword,
		"location", location, "page", page, "results", len(records))

	// Listing pages don't expose a reliable total; assume more while full.
	perPage := criteria.PerPage
	if perPage < 1 {
		perPage = 25
	}
	return &Result{
		Records: records,
		HasMore: len(records) >= perPage,
	}, nil
}

// parseListings walks the document collecting nodes marked with the
// directory's listing classes.
func parseListings(doc *html.Node, location string) []models.RawRecord {
	var records []models.RawRecord

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "listing") {
			if rec, ok := listingToRecord(n, location); ok {
				records = append(records, rec)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return records
}

func listingToRecord(listing *html.Node, location string) (models.RawRecord, bool) {
	rec := models.RawRecord{
		Source:   models.SourceBusinessDirectory,
		Location: location,
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "listing-name"):
				rec.CompanyName = strings.TrimSpace(textContent(n))
			case hasClass(n, "click-to-call"):
				rec.Phone = strings.TrimSpace(textContent(n))
			case hasClass(n, "listing-address"):
				if addr := strings.TrimSpace(textContent(n)); addr != "" {
					rec.Location = addr
				}
			case hasClass(n, "contact-url"):
				rec.Website = attr(n, "href")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(listing)

	return rec, rec.CompanyName != ""
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
