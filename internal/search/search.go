package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonor84/nodeimages/internal/config"
	"github.com/jonor84/nodeimages/pkg/logger"
	"github.com/jonor84/nodeimages/pkg/metrics"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var (
	// ErrRateLimited means the search API answered 429.
	ErrRateLimited = errors.New("search: upstream rate limited")
	// ErrUpstream covers every other failure talking to the search API.
	ErrUpstream = errors.New("search: upstream failure")
	// ErrEmptyQuery is returned before any upstream call for a blank query.
	ErrEmptyQuery = errors.New("search: empty query")
)

const pageSize = 10

// Image is one filtered image result.
type Image struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	ByteSize      int64  `json:"byteSize"`
	ThumbnailLink string `json:"thumbnailLink,omitempty"`
	ContextLink   string `json:"contextLink,omitempty"`
}

// Result is the outcome of Search. Images is empty, never nil.
type Result struct {
	Query       string
	Images      []Image
	Suggestions []string
	Misspelled  bool
	Elapsed     time.Duration
}

// Gateway queries the Custom Search JSON API.
type Gateway struct {
	svc      *customsearch.Service
	engineID string
	timeout  time.Duration
	include  []string
	exclude  []string
	log      *logger.Logger
}

// New builds a Gateway from cfg. Extra options are appended last, so tests
// can pass option.WithHTTPClient.
func New(ctx context.Context, cfg config.SearchConfig, extra ...option.ClientOption) (*Gateway, error) {
	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom search service: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		svc:      svc,
		engineID: cfg.EngineID,
		timeout:  timeout,
		include:  lower(cfg.IncludeDomains),
		exclude:  lower(cfg.ExcludeDomains),
		log:      logger.Named("search"),
	}, nil
}

// CheckSpelling reports whether the API proposes a correction for query.
// Failures read as "not misspelled".
func (g *Gateway) CheckSpelling(ctx context.Context, query string) bool {
	_, ok := g.spelling(ctx, query)
	return ok
}

// SuggestCorrection returns the corrected query, if the API supplies one.
func (g *Gateway) SuggestCorrection(ctx context.Context, query string) []string {
	if corrected, ok := g.spelling(ctx, query); ok {
		return []string{corrected}
	}
	return []string{}
}

// Search runs the spelling lookup and, when the query is spelled correctly,
// an image search filtered by the configured domains. A misspelled query
// returns the suggestion without calling the image endpoint.
func (g *Gateway) Search(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	res := Result{Query: query, Images: []Image{}, Suggestions: []string{}}
	if query == "" {
		return res, ErrEmptyQuery
	}

	start := time.Now()
	done := func() {
		res.Elapsed = time.Since(start)
		metrics.SearchDuration.Observe(res.Elapsed.Seconds())
	}

	if corrected, ok := g.spelling(ctx, query); ok {
		res.Misspelled = true
		res.Suggestions = []string{corrected}
		metrics.SearchRequests.WithLabelValues("misspelled").Inc()
		done()
		return res, nil
	}

	items, err := g.images(ctx, query)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrRateLimited) {
			outcome = "rate_limited"
		}
		metrics.SearchRequests.WithLabelValues(outcome).Inc()
		g.log.Warnf("image search %q failed: %v", query, err)
		done()
		return res, err
	}
	res.Images = g.filter(items)
	metrics.SearchRequests.WithLabelValues("ok").Inc()
	done()
	g.log.Debugf("image search %q: %d of %d results kept in %s", query, len(res.Images), len(items), res.Elapsed)
	return res, nil
}

func (g *Gateway) spelling(ctx context.Context, query string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err := g.svc.Cse.List().
		Q(query).
		Cx(g.engineID).
		Num(1).
		Fields(googleapi.Field("spelling")).
		Context(ctx).
		Do()
	if err != nil {
		g.log.Warnf("spelling check %q failed, assuming correct: %v", query, classify(err))
		return "", false
	}
	if resp.Spelling == nil || resp.Spelling.CorrectedQuery == "" {
		return "", false
	}
	return resp.Spelling.CorrectedQuery, true
}

func (g *Gateway) images(ctx context.Context, query string) ([]*customsearch.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err := g.svc.Cse.List().
		Q(query).
		Cx(g.engineID).
		SearchType("image").
		Num(pageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}
	return resp.Items, nil
}

func (g *Gateway) filter(items []*customsearch.Result) []Image {
	out := []Image{}
	for _, it := range items {
		if it == nil || !g.allowed(it.Link) {
			continue
		}
		img := Image{Title: it.Title, Link: it.Link}
		if it.Image != nil {
			img.ByteSize = it.Image.ByteSize
			img.ThumbnailLink = it.Image.ThumbnailLink
			img.ContextLink = it.Image.ContextLink
		}
		out = append(out, img)
	}
	return out
}

func (g *Gateway) allowed(link string) bool {
	l := strings.ToLower(link)
	for _, d := range g.exclude {
		if strings.Contains(l, d) {
			return false
		}
	}
	if len(g.include) == 0 {
		return true
	}
	for _, d := range g.include {
		if strings.Contains(l, d) {
			return true
		}
	}
	return false
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
