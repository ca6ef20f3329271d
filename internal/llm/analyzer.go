package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ppiankov/veritas/internal/cache"
	"github.com/ppiankov/veritas/internal/fetch"
	"github.com/ppiankov/veritas/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProviderFactory builds a provider once a credential has been resolved
type ProviderFactory func(ctx context.Context, cfg Config) (Provider, error)

// Limiter throttles outbound calls per key
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// LinkFetcher retrieves the readable content of a URL
type LinkFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Analyzer turns submissions into validated results.
// The provider is built on first use and reused afterwards.
type Analyzer struct {
	config  Config
	factory ProviderFactory

	mu       sync.Mutex
	provider Provider

	cache    cache.Cache
	cacheTTL time.Duration
	limiter  Limiter
	links    LinkFetcher
	maxPages int
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithCache stores successful results in c for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithLimiter throttles provider calls
func WithLimiter(l Limiter) Option {
	return func(a *Analyzer) { a.limiter = l }
}

// WithLinkFetcher appends the content of up to maxPages linked pages to prompts
func WithLinkFetcher(f LinkFetcher, maxPages int) Option {
	return func(a *Analyzer) {
		a.links = f
		a.maxPages = maxPages
	}
}

// WithProviderFactory replaces NewProvider
func WithProviderFactory(f ProviderFactory) Option {
	return func(a *Analyzer) { a.factory = f }
}

// NewAnalyzer creates an analyzer. No network or credential access happens until the first analysis.
func NewAnalyzer(cfg Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		config:  cfg,
		factory: NewProvider,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProviderName returns the configured provider name
func (a *Analyzer) ProviderName() string {
	return normalizeProvider(a.config.Provider)
}

// Analyze dispatches a submission by mode. Fact checks ignore attachments.
func (a *Analyzer) Analyze(ctx context.Context, sub model.Submission) (model.Result, error) {
	switch sub.Mode {
	case model.ModeFact:
		return a.run(ctx, model.ModeFact, sub.Query, nil)
	case model.ModeLegal:
		return a.run(ctx, model.ModeLegal, sub.Query, sub.File)
	default:
		return model.Result{}, fmt.Errorf("unknown mode %q", sub.Mode)
	}
}

// AnalyzeFact fact-checks text
func (a *Analyzer) AnalyzeFact(ctx context.Context, text string) (model.FactResult, error) {
	res, err := a.run(ctx, model.ModeFact, text, nil)
	if err != nil {
		return model.FactResult{}, err
	}
	return *res.Fact, nil
}

// AnalyzeLegal legal-checks text and an optional attachment
func (a *Analyzer) AnalyzeLegal(ctx context.Context, text string, file *model.Attachment) (model.LegalResult, error) {
	res, err := a.run(ctx, model.ModeLegal, text, file)
	if err != nil {
		return model.LegalResult{}, err
	}
	return *res.Legal, nil
}

func (a *Analyzer) run(ctx context.Context, mode model.Mode, text string, file *model.Attachment) (model.Result, error) {
	key := cache.Key(a.ProviderName(), a.config.Model, mode, text, file)
	if res, ok := a.cached(key, mode); ok {
		return res, nil
	}

	provider, err := a.getProvider(ctx)
	if err != nil {
		return model.Result{}, a.fail("init", err)
	}

	req := a.buildRequest(ctx, mode, text, file)

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, provider.Name()); err != nil {
			return model.Result{}, a.fail("rate limit", err)
		}
	}

	start := time.Now()
	resp, err := provider.Generate(ctx, req)
	if err != nil {
		return model.Result{}, a.fail("generate", err)
	}

	res, err := ParseResult(mode, resp.Text)
	if err != nil {
		return model.Result{}, a.fail("parse reply", err)
	}

	zap.L().Info("analysis complete",
		zap.String("provider", provider.Name()),
		zap.String("model", resp.Model),
		zap.String("mode", string(mode)),
		zap.String("verdict", res.Verdict()),
		zap.Int("tokens", resp.TokensUsed),
		zap.Duration("elapsed", time.Since(start)),
	)

	a.store(key, res)
	return res, nil
}

func (a *Analyzer) buildRequest(ctx context.Context, mode model.Mode, text string, file *model.Attachment) GenerateRequest {
	req := GenerateRequest{
		Model:     a.config.Model,
		MaxTokens: a.config.MaxTokens,
	}
	switch mode {
	case model.ModeFact:
		req.System = FactSystemInstruction
		req.Prompt = FactPrompt(text)
		req.Schema = FactSchema
	case model.ModeLegal:
		req.System = LegalSystemInstruction
		req.Prompt = LegalPrompt(text, file != nil)
		req.Schema = LegalSchema
		req.Attachment = file
	}
	req.Prompt = AppendLinkContext(req.Prompt, a.fetchLinks(ctx, text))
	return req
}

// fetchLinks retrieves up to maxPages linked pages, trying at most twice as
// many URLs concurrently. Pages keep the order of their links in text.
// Failures are logged and skipped.
func (a *Analyzer) fetchLinks(ctx context.Context, text string) []*fetch.Page {
	if a.links == nil || a.maxPages <= 0 {
		return nil
	}

	urls := fetch.ExtractURLs(text)
	if len(urls) > 2*a.maxPages {
		urls = urls[:2*a.maxPages]
	}

	fetched := make([]*fetch.Page, len(urls))
	var g errgroup.Group
	g.SetLimit(a.maxPages)
	for i, u := range urls {
		g.Go(func() error {
			page, err := a.links.Fetch(ctx, u)
			if err != nil {
				zap.L().Warn("link fetch failed", zap.String("url", u), zap.Error(err))
				return nil
			}
			fetched[i] = page
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]*fetch.Page, 0, a.maxPages)
	for _, p := range fetched {
		if p != nil && len(pages) < a.maxPages {
			pages = append(pages, p)
		}
	}
	return pages
}

func (a *Analyzer) getProvider(ctx context.Context) (Provider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.provider != nil {
		return a.provider, nil
	}

	cfg := a.config
	if RequiresAPIKey(cfg.Provider) {
		cfg.APIKey = ResolveAPIKey(cfg)
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", a.ProviderName(), ErrMissingCredential)
		}
	}

	p, err := a.factory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.provider = p
	return p, nil
}

func (a *Analyzer) cached(key string, mode model.Mode) (model.Result, bool) {
	if a.cache == nil {
		return model.Result{}, false
	}
	data, ok := a.cache.Get(key)
	if !ok {
		return model.Result{}, false
	}

	var res model.Result
	if err := json.Unmarshal(data, &res); err != nil || res.Mode != mode || res.Validate() != nil {
		_ = a.cache.Delete(key)
		return model.Result{}, false
	}

	zap.L().Debug("analysis cache hit", zap.String("mode", string(mode)))
	return res, true
}

func (a *Analyzer) store(key string, res model.Result) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := a.cache.Set(key, data, a.cacheTTL); err != nil {
		zap.L().Warn("cache write failed", zap.Error(err))
	}
}

func (a *Analyzer) fail(op string, err error) error {
	zap.L().Error("analysis failed",
		zap.String("provider", a.ProviderName()),
		zap.String("op", op),
		zap.Error(err),
	)
	return &ProviderError{Provider: a.ProviderName(), Op: op, Err: err}
}
