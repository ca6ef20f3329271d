package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

// ErrDisallowed is returned when robots.txt forbids the fetch
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Options configures a Fetcher
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	MaxBytes      int64
	MaxChars      int
	RespectRobots bool
	HTTPProxy     string
	HTTPSProxy    string
}

// Page is the readable content of a fetched URL
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Title       string
	Text        string
	Authority   Tier // of FinalURL
}

// Fetcher retrieves pages linked from a submission
type Fetcher struct {
	httpClient *http.Client
	robots     *RobotsChecker
	authority  *AuthorityClassifier
	userAgent  string
	maxBytes   int64
	maxChars   int
}

// NewFetcher creates a fetcher
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 2_000_000
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy: NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	f := &Fetcher{
		httpClient: client,
		authority:  NewAuthorityClassifier(nil, nil),
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		maxChars:   opts.MaxChars,
	}
	if opts.RespectRobots {
		f.robots = NewRobotsChecker(opts.UserAgent, client)
	}
	return f
}

// Fetch downloads rawURL and extracts its readable text
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL %q", rawURL)
	}

	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	page := &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	page.Authority = f.authority.Classify(page.FinalURL)

	mediaType, _, _ := mime.ParseMediaType(page.ContentType)
	switch {
	case mediaType == "" || mediaType == "text/html" || mediaType == "application/xhtml+xml":
		if title, text, ok := f.readable(body, resp.Request.URL); ok {
			page.Title = title
			page.Text = text
			break
		}
		title, text, err := ExtractText(string(body), f.maxChars)
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		page.Title = title
		page.Text = text
	case strings.HasPrefix(mediaType, "text/"):
		page.Text = truncate(strings.TrimSpace(string(body)), f.maxChars)
	default:
		return nil, fmt.Errorf("unsupported content type %q", mediaType)
	}

	return page, nil
}

// readable extracts the main article of an HTML page. It reports false for
// pages that do not look like articles, which fall back to ExtractText.
func (f *Fetcher) readable(body []byte, pageURL *url.URL) (string, string, bool) {
	if !readability.Check(bytes.NewReader(body)) {
		return "", "", false
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		zap.L().Debug("readability failed", zap.String("url", pageURL.String()), zap.Error(err))
		return "", "", false
	}

	text := collapseLines(article.TextContent)
	if text == "" {
		return "", "", false
	}
	return strings.TrimSpace(article.Title), truncate(text, f.maxChars), true
}

// collapseLines squeezes whitespace within lines and drops blank lines
func collapseLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if l := strings.Join(strings.Fields(line), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + "…"
}
