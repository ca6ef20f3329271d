package pipeline

import (
	"github.com/ppiankov/veritas/internal/cache"
	"github.com/ppiankov/veritas/internal/config"
	"github.com/ppiankov/veritas/internal/fetch"
	"github.com/ppiankov/veritas/internal/history"
	"github.com/ppiankov/veritas/internal/llm"
	"github.com/ppiankov/veritas/internal/prefs"
	"github.com/ppiankov/veritas/internal/session"
	"github.com/ppiankov/veritas/internal/store"
	"github.com/ppiankov/veritas/internal/worker"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Pipeline wires the store, history, preferences, analyzer and session
// that every command and the API server share
type Pipeline struct {
	Config   *config.Config
	Store    store.Store
	History  *history.Manager
	Prefs    *prefs.Preferences
	Analyzer *llm.Analyzer
	Session  *session.Session
}

// Options adjusts how the pipeline is assembled
type Options struct {
	NoCache   bool                // skip the result cache
	Ephemeral bool                // keep history and preferences in memory only
	Factory   llm.ProviderFactory // overrides provider construction
}

// New builds the pipeline from cfg. The analysis provider is not contacted
// until the first submission.
func New(cfg *config.Config, opts Options) (*Pipeline, error) {
	driver := cfg.Store.Driver
	if opts.Ephemeral {
		driver = "memory"
	}

	st, err := store.Open(driver, cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: open store")
	}

	h := history.NewManager(st, history.WithLimit(cfg.History.Limit))
	h.Load()

	analyzer := llm.NewAnalyzer(llm.ConfigFromApp(cfg), analyzerOptions(cfg, opts)...)

	zap.L().Debug("pipeline ready",
		zap.String("store", driver),
		zap.String("provider", analyzer.ProviderName()),
		zap.Int("history", h.Len()),
	)

	return &Pipeline{
		Config:   cfg,
		Store:    st,
		History:  h,
		Prefs:    prefs.New(st),
		Analyzer: analyzer,
		Session:  session.New(analyzer, h),
	}, nil
}

func analyzerOptions(cfg *config.Config, opts Options) []llm.Option {
	out := []llm.Option{
		llm.WithLimiter(worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)),
	}

	if cfg.Cache.Enabled && !opts.NoCache {
		var c cache.Cache
		if opts.Ephemeral {
			c = cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
		} else {
			c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		}
		out = append(out, llm.WithCache(c, cfg.Cache.DiskTTL))
	}

	if cfg.Links.Enabled {
		f := fetch.NewFetcher(fetch.Options{
			Timeout:       cfg.Links.Timeout,
			UserAgent:     cfg.Links.UserAgent,
			MaxBytes:      cfg.Links.MaxBytes,
			MaxChars:      cfg.Links.MaxChars,
			RespectRobots: cfg.Links.RespectRobots,
			HTTPProxy:     cfg.Links.HTTPProxy,
			HTTPSProxy:    cfg.Links.HTTPSProxy,
		})
		out = append(out, llm.WithLinkFetcher(f, cfg.Links.MaxPages))
	}

	if opts.Factory != nil {
		out = append(out, llm.WithProviderFactory(opts.Factory))
	}
	return out
}

// Batch returns a processor that records every success in history
func (p *Pipeline) Batch(concurrency int) *worker.BatchProcessor {
	if concurrency <= 0 {
		concurrency = p.Config.Batch.Concurrency
	}
	return worker.NewBatchProcessor(p.Analyzer, p.History, concurrency)
}

// Close releases the store
func (p *Pipeline) Close() error {
	if err := p.Store.Close(); err != nil {
		return eris.Wrap(err, "pipeline: close store")
	}
	return nil
}
