package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/veritas/internal/cache"
	"github.com/ppiankov/veritas/internal/fetch"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider implements the Provider interface for testing
type mockProvider struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []GenerateRequest
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &GenerateResponse{Text: m.reply, Model: "mock-1"}, nil
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func factoryFor(p Provider, built *int) ProviderFactory {
	return func(ctx context.Context, cfg Config) (Provider, error) {
		if built != nil {
			*built++
		}
		return p, nil
	}
}

const factReplyJSON = `{"result":"True","confidence":"High","detailedExplanation":"Water boils at 100C at sea level.","accuracyScore":96}`

func TestAnalyzer_AnalyzeFact(t *testing.T) {
	provider := &mockProvider{reply: factReplyJSON}
	built := 0
	a := NewAnalyzer(Config{Provider: "gemini", APIKey: "k"}, WithProviderFactory(factoryFor(provider, &built)))

	res, err := a.AnalyzeFact(context.Background(), "water boils at 100C")
	require.NoError(t, err)
	assert.Equal(t, model.FactTrue, res.Result)
	assert.Equal(t, 96, res.AccuracyScore)

	_, err = a.AnalyzeFact(context.Background(), "second claim")
	require.NoError(t, err)

	assert.Equal(t, 1, built, "provider is constructed once and reused")
	require.Equal(t, 2, provider.calls())
	assert.Equal(t, FactSystemInstruction, provider.requests[0].System)
	assert.Equal(t, FactSchema.Name, provider.requests[0].Schema.Name)
	assert.Nil(t, provider.requests[0].Attachment)
}

func TestAnalyzer_FactIgnoresAttachment(t *testing.T) {
	provider := &mockProvider{reply: factReplyJSON}
	a := NewAnalyzer(Config{APIKey: "k"}, WithProviderFactory(factoryFor(provider, nil)))

	res, err := a.Analyze(context.Background(), model.Submission{
		Query: "claim",
		Mode:  model.ModeFact,
		File:  &model.Attachment{Name: "a.png", MIMEType: "image/png", Data: []byte{1}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ModeFact, res.Mode)
	assert.Nil(t, provider.requests[0].Attachment)
}

func TestAnalyzer_AnalyzeLegalWithFile(t *testing.T) {
	provider := &mockProvider{reply: `{"verdict":"Fake","reason":"Altered dates.","summary":"Tampered.","accuracyScore":77}`}
	a := NewAnalyzer(Config{APIKey: "k"}, WithProviderFactory(factoryFor(provider, nil)))

	file := &model.Attachment{Name: "lease.pdf", MIMEType: "application/pdf", Data: []byte("%PDF")}
	res, err := a.AnalyzeLegal(context.Background(), "", file)
	require.NoError(t, err)
	assert.Equal(t, model.LegalFake, res.Verdict)

	req := provider.requests[0]
	assert.Equal(t, LegalSystemInstruction, req.System)
	assert.Same(t, file, req.Attachment)
	assert.True(t, strings.HasPrefix(req.Prompt, "Perform a legal analysis on the attached file."))
}

func TestAnalyzer_MissingCredential(t *testing.T) {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"} {
		t.Setenv(name, "")
	}

	built := 0
	a := NewAnalyzer(Config{Provider: "gemini"}, WithProviderFactory(factoryFor(&mockProvider{reply: factReplyJSON}, &built)))

	_, err := a.AnalyzeFact(context.Background(), "claim")
	require.Error(t, err)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "init", pe.Op)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, 0, built)
}

func TestAnalyzer_CredentialFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("API_KEY", "env-key")

	var gotKey string
	a := NewAnalyzer(Config{Provider: "gemini"}, WithProviderFactory(func(ctx context.Context, cfg Config) (Provider, error) {
		gotKey = cfg.APIKey
		return &mockProvider{reply: factReplyJSON}, nil
	}))

	_, err := a.AnalyzeFact(context.Background(), "claim")
	require.NoError(t, err)
	assert.Equal(t, "env-key", gotKey)
}

func TestAnalyzer_FailuresAreProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider *mockProvider
		op       string
	}{
		{name: "network", provider: &mockProvider{err: errors.New("dial tcp: connection refused")}, op: "generate"},
		{name: "malformed", provider: &mockProvider{reply: "not json"}, op: "parse reply"},
		{name: "wrong shape", provider: &mockProvider{reply: `{"verdict":"Original","reason":"r","summary":"s","accuracyScore":5}`}, op: "parse reply"},
		{name: "score range", provider: &mockProvider{reply: `{"result":"True","confidence":"High","detailedExplanation":"x","accuracyScore":-3}`}, op: "parse reply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(Config{APIKey: "k"}, WithProviderFactory(factoryFor(tt.provider, nil)))
			_, err := a.Analyze(context.Background(), model.Submission{Query: "claim", Mode: model.ModeFact})

			var pe *ProviderError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.op, pe.Op)
			assert.Equal(t, 1, tt.provider.calls(), "no retries")
		})
	}
}

func TestAnalyzer_CachesSuccessOnly(t *testing.T) {
	provider := &mockProvider{err: errors.New("quota exceeded")}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	a := NewAnalyzer(Config{APIKey: "k", Model: "m"}, WithProviderFactory(factoryFor(provider, nil)), WithCache(c, time.Minute))

	_, err := a.AnalyzeFact(context.Background(), "claim")
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	provider.err = nil
	provider.reply = factReplyJSON

	first, err := a.AnalyzeFact(context.Background(), "claim")
	require.NoError(t, err)
	second, err := a.AnalyzeFact(context.Background(), "claim")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, provider.calls())
	assert.Equal(t, 1, c.Len())
}

type countingLimiter struct {
	keys []string
	err  error
}

func (l *countingLimiter) Wait(ctx context.Context, key string) error {
	l.keys = append(l.keys, key)
	return l.err
}

func TestAnalyzer_Limiter(t *testing.T) {
	provider := &mockProvider{reply: factReplyJSON}
	limiter := &countingLimiter{}
	a := NewAnalyzer(Config{APIKey: "k"}, WithProviderFactory(factoryFor(provider, nil)), WithLimiter(limiter))

	_, err := a.AnalyzeFact(context.Background(), "claim")
	require.NoError(t, err)
	assert.Equal(t, []string{"mock"}, limiter.keys)

	limiter.err = context.Canceled
	_, err = a.AnalyzeFact(context.Background(), "claim")
	assert.True(t, IsProviderError(err))
	assert.Equal(t, 1, provider.calls())
}

type stubFetcher struct {
	pages map[string]*fetch.Page
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (*fetch.Page, error) {
	if p, ok := s.pages[rawURL]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func TestAnalyzer_LinkContext(t *testing.T) {
	provider := &mockProvider{reply: factReplyJSON}
	fetcher := &stubFetcher{pages: map[string]*fetch.Page{
		"https://news.example/a": {URL: "https://news.example/a", Title: "Story", Text: "The mayor resigned on Monday."},
		"https://news.example/c": {URL: "https://news.example/c", Text: "unused"},
	}}
	a := NewAnalyzer(Config{APIKey: "k"}, WithProviderFactory(factoryFor(provider, nil)), WithLinkFetcher(fetcher, 1))

	_, err := a.AnalyzeFact(context.Background(), "Did the mayor resign? https://news.example/missing https://news.example/a https://news.example/c")
	require.NoError(t, err)

	prompt := provider.requests[0].Prompt
	assert.Contains(t, prompt, "The mayor resigned on Monday.")
	assert.Contains(t, prompt, "(Story)")
	assert.NotContains(t, prompt, "unused")
}
