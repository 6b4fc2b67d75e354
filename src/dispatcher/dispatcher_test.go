package dispatcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"www.github.com/Wanderer0074348/Yahmi/src/cache"
	"www.github.com/Wanderer0074348/Yahmi/src/config"
	"www.github.com/Wanderer0074348/Yahmi/src/mocks"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
	"www.github.com/Wanderer0074348/Yahmi/src/router"
)

const (
	simplePrompt   = "Give me a quick list of ESG quick wins for a bakery"
	validJSON      = `{"score": 72, "summary": "Solid governance practices with room to grow."}`
	errTimeoutText = "request timeout after 30s"
)

var (
	moderatePrompt = strings.Repeat("carbon disclosure ", 40)
	complexPrompt  = "Produce a comprehensive ESG review of our supply chain"
	validText      = strings.Repeat("Reduce scope two emissions. ", 15)
)

type fakeResult struct {
	text string
	err  error
}

type fakeBackend struct {
	mu      sync.Mutex
	results []fakeResult
	calls   int
}

func respond(results ...fakeResult) *fakeBackend {
	return &fakeBackend{results: results}
}

func (f *fakeBackend) Generate(ctx context.Context, prompt string, opts models.GenerationOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	if len(f.results) == 0 {
		return "", errors.New("no response configured")
	}
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i].text, f.results[i].err
}

func (f *fakeBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStreamer struct {
	fakeBackend
	chunks    []string
	streamErr error
}

func (f *fakeStreamer) Stream(ctx context.Context, prompt string, opts models.GenerationOptions, onChunk func(string) error) error {
	for _, c := range f.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return f.streamErr
}

func testConfig(tiers Tiers) Config {
	return Config{
		Tiers:          tiers,
		Ceilings:       map[string]int{"groq": 10, "openrouter": 30},
		DefaultCeiling: 30,
		RateWindow:     time.Minute,
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
		LowConfidence:  0.3,
	}
}

func provider(name, service string, backend models.TextBackend) Provider {
	return Provider{Name: name, Service: service, Speed: "fast", Backend: backend}
}

func TestComplete_CacheHitSkipsBackend(t *testing.T) {
	backend := respond(fakeResult{text: validText})
	d := New(testConfig(Tiers{
		config.TierFast: {provider("A", "groq", backend)},
	}), cache.NewMemoryCache(5*time.Minute, 100), nil, nil)

	req := &models.CompletionRequest{Prompt: simplePrompt}

	first, err := d.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, "A", first.Provider)
	assert.Equal(t, string(router.ComplexitySimple), first.Complexity)

	second, err := d.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Text, second.Text)
	assert.Zero(t, second.Usage.Cost)
	assert.Equal(t, 1, backend.Calls(), "cache hit must not call the backend")
}

func TestComplete_ExpiredEntryCallsBackend(t *testing.T) {
	backend := respond(fakeResult{text: validText})
	d := New(testConfig(Tiers{
		config.TierFast: {provider("A", "groq", backend)},
	}), cache.NewMemoryCache(20*time.Millisecond, 100), nil, nil)

	req := &models.CompletionRequest{Prompt: simplePrompt}

	_, err := d.Complete(context.Background(), req)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	again, err := d.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, again.CacheHit)
	assert.Equal(t, 2, backend.Calls())
}

func TestComplete_TimeoutsThenNextProvider(t *testing.T) {
	a := respond(fakeResult{err: errors.New(errTimeoutText)})
	b := respond(fakeResult{text: "```json\n" + validJSON + "\n```"})
	c := cache.NewMemoryCache(5*time.Minute, 100)

	d := New(testConfig(Tiers{
		config.TierFast: {provider("A", "groq", a), provider("B", "openrouter", b)},
	}), c, nil, nil)

	opts := models.GenerationOptions{Temperature: 0.7, MaxTokens: 3000}
	req := &models.CompletionRequest{Prompt: simplePrompt, Options: opts, Format: models.FormatStructured}

	got, err := d.Complete(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, a.Calls(), "timeouts are retried up to the attempt limit")
	assert.Equal(t, 1, b.Calls())
	assert.Equal(t, "B", got.Provider)
	assert.Equal(t, 1.0, got.Score)

	cached, err := c.Get(context.Background(), router.GenerateCacheKey(simplePrompt, opts, router.CacheKeyPrefix))
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, got.Text, cached.Text)
}

func TestComplete_PermanentErrorRotatesImmediately(t *testing.T) {
	a := respond(fakeResult{err: errors.New("invalid api key")})
	b := respond(fakeResult{text: validText})

	d := New(testConfig(Tiers{
		config.TierFast: {provider("A", "groq", a), provider("B", "groq", b)},
	}), nil, nil, nil)

	got, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: simplePrompt})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Calls())
	assert.Equal(t, "B", got.Provider)
}

func TestComplete_InvalidResponseRotates(t *testing.T) {
	a := respond(fakeResult{text: "I'm sorry, I cannot help with that."})
	b := respond(fakeResult{text: validText})

	d := New(testConfig(Tiers{
		config.TierFast: {provider("A", "groq", a), provider("B", "groq", b)},
	}), nil, nil, nil)

	got, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: simplePrompt})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Calls())
	assert.Equal(t, "B", got.Provider)
}

func TestComplete_InvalidResponseIsNotCached(t *testing.T) {
	a := respond(fakeResult{text: "too short"})
	c := cache.NewMemoryCache(time.Minute, 100)

	d := New(testConfig(Tiers{
		config.TierFast: {provider("A", "groq", a)},
	}), c, nil, nil)

	_, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: simplePrompt})
	assert.ErrorIs(t, err, ErrAllProvidersFailed)

	n, _ := c.Len(context.Background())
	assert.Zero(t, n)
}

func TestComplete_SimpleTierExhaustedIsTerminal(t *testing.T) {
	fastA := respond(fakeResult{err: errors.New("boom")})
	fastB := respond(fakeResult{err: errors.New("boom")})
	balanced := respond(fakeResult{text: validText})
	advanced := respond(fakeResult{text: validText})

	d := New(testConfig(Tiers{
		config.TierFast:     {provider("A", "groq", fastA), provider("B", "groq", fastB)},
		config.TierBalanced: {provider("C", "openrouter", balanced)},
		config.TierAdvanced: {provider("D", "openrouter", advanced)},
	}), nil, nil, nil)

	_, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: simplePrompt})
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Equal(t, "all providers failed", err.Error())

	assert.Equal(t, 1, fastA.Calls())
	assert.Equal(t, 1, fastB.Calls())
	assert.Zero(t, balanced.Calls())
	assert.Zero(t, advanced.Calls())
}

func TestComplete_NonSimpleRepeatsTierOnce(t *testing.T) {
	balanced := respond(fakeResult{err: errors.New("boom")})
	fast := respond(fakeResult{text: validText})

	d := New(testConfig(Tiers{
		config.TierFast:     {provider("A", "groq", fast)},
		config.TierBalanced: {provider("C", "openrouter", balanced)},
	}), nil, nil, nil)

	_, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: moderatePrompt})
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Equal(t, 2, balanced.Calls(), "one primary pass and one fallback pass")
	assert.Zero(t, fast.Calls())
}

func TestComplete_ConfiguredFallbackTier(t *testing.T) {
	balanced := respond(fakeResult{err: errors.New("boom")})
	fast := respond(fakeResult{text: validText})

	cfg := testConfig(Tiers{
		config.TierFast:     {provider("A", "groq", fast)},
		config.TierBalanced: {provider("C", "openrouter", balanced)},
	})
	cfg.FallbackTier = config.TierFast
	d := New(cfg, nil, nil, nil)

	got, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: moderatePrompt})
	require.NoError(t, err)
	assert.Equal(t, 1, balanced.Calls())
	assert.Equal(t, "A", got.Provider)
	assert.Equal(t, config.TierFast, got.Tier)
	assert.Equal(t, string(router.ComplexityModerate), got.Complexity)
}

func TestComplete_RateLimitedOnlyCandidateStillTried(t *testing.T) {
	backend := respond(fakeResult{text: validText})
	cfg := testConfig(Tiers{
		config.TierFast: {provider("A", "groq", backend)},
	})
	cfg.Ceilings = map[string]int{"groq": 1}
	d := New(cfg, nil, nil, nil)

	d.RateLimiter().Check("groq")
	require.False(t, d.RateLimiter().Available("groq"))

	got, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: simplePrompt})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Calls())
	assert.Equal(t, "A", got.Provider)
}

func TestComplete_RateLimitedProviderSkippedWhenAlternativeExists(t *testing.T) {
	limited := respond(fakeResult{text: validText})
	open := respond(fakeResult{text: validText})

	cfg := testConfig(Tiers{
		config.TierFast: {provider("A", "groq", limited), provider("B", "openrouter", open)},
	})
	cfg.Ceilings = map[string]int{"groq": 1, "openrouter": 30}
	d := New(cfg, nil, nil, nil)
	d.RateLimiter().Check("groq")

	got, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: simplePrompt})
	require.NoError(t, err)
	assert.Zero(t, limited.Calls())
	assert.Equal(t, "B", got.Provider)
}

func TestComplete_AttemptsCountAgainstRateWindow(t *testing.T) {
	backend := respond(fakeResult{err: errors.New("429 too many requests")})
	d := New(testConfig(Tiers{
		config.TierFast: {provider("A", "groq", backend)},
	}), nil, nil, nil)

	_, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: simplePrompt})
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Equal(t, 3, d.RateLimiter().Count("groq"))
}

func TestComplete_ContextCanceledDuringBackoff(t *testing.T) {
	backend := respond(fakeResult{err: errors.New("rate limit exceeded")})
	cfg := testConfig(Tiers{
		config.TierFast: {provider("A", "groq", backend)},
	})
	cfg.RetryBaseDelay = time.Hour
	d := New(cfg, nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Complete(ctx, &models.CompletionRequest{Prompt: simplePrompt})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, backend.Calls())
}

func TestComplete_EmptyTierFails(t *testing.T) {
	d := New(testConfig(Tiers{}), nil, nil, nil)

	_, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: complexPrompt})
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestStream_ComplexFallsBackToFast(t *testing.T) {
	advanced := respond(fakeResult{err: errors.New("boom")})
	fast := &fakeStreamer{chunks: []string{"Scope 1 ", "is direct."}}

	d := New(testConfig(Tiers{
		config.TierAdvanced: {provider("D", "openrouter", advanced)},
		config.TierFast:     {provider("A", "groq", fast)},
	}), nil, nil, nil)

	var got strings.Builder
	err := d.Stream(context.Background(), complexPrompt, models.GenerationOptions{}, func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, advanced.Calls())
	assert.Equal(t, "Scope 1 is direct.", got.String())
}

func TestStream_SimpleUsesFastOnly(t *testing.T) {
	advanced := &fakeStreamer{chunks: []string{"advanced"}}
	fast := &fakeStreamer{streamErr: errors.New("boom")}

	d := New(testConfig(Tiers{
		config.TierAdvanced: {provider("D", "openrouter", advanced)},
		config.TierFast:     {provider("A", "groq", fast)},
	}), nil, nil, nil)

	err := d.Stream(context.Background(), simplePrompt, models.GenerationOptions{}, func(string) error { return nil })
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestStream_FailureAfterFirstChunkIsReturned(t *testing.T) {
	first := &fakeStreamer{chunks: []string{"partial"}, streamErr: errors.New("connection reset")}
	second := &fakeStreamer{chunks: []string{"never"}}

	d := New(testConfig(Tiers{
		config.TierFast: {provider("A", "groq", first), provider("B", "groq", second)},
	}), nil, nil, nil)

	var chunks []string
	err := d.Stream(context.Background(), simplePrompt, models.GenerationOptions{}, func(c string) error {
		chunks = append(chunks, c)
		return nil
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAllProvidersFailed)
	assert.Equal(t, []string{"partial"}, chunks)
}

func TestStream_SkipsRateLimitedServiceWhenAlternativeExists(t *testing.T) {
	limited := &fakeStreamer{chunks: []string{"limited"}}
	open := &fakeStreamer{chunks: []string{"open"}}

	cfg := testConfig(Tiers{
		config.TierFast: {provider("A", "groq", limited), provider("B", "openrouter", open)},
	})
	cfg.Ceilings = map[string]int{"groq": 1, "openrouter": 30}
	d := New(cfg, nil, nil, nil)
	d.RateLimiter().Check("groq")

	var chunks []string
	err := d.Stream(context.Background(), simplePrompt, models.GenerationOptions{}, func(c string) error {
		chunks = append(chunks, c)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"open"}, chunks)
	assert.Equal(t, 1, d.RateLimiter().Count("groq"))
	assert.Equal(t, 1, d.RateLimiter().Count("openrouter"))
}

func TestNewConfig(t *testing.T) {
	cfg := &config.Config{
		Services: config.DefaultServices(),
		Dispatcher: config.DispatcherConfig{
			MaxAttempts:    3,
			RetryBaseDelay: time.Second,
			FallbackTier:   config.TierFast,
			DefaultCeiling: 30,
		},
	}

	dc := NewConfig(cfg, Tiers{})
	assert.Equal(t, 10, dc.Ceilings["groq"])
	assert.Equal(t, 30, dc.Ceilings["openrouter"])
	assert.Equal(t, 1.5, dc.Pricing["openrouter"].OutputPer1M)
	assert.Equal(t, config.TierFast, dc.FallbackTier)
}

func TestComplete_CacheFailuresDoNotFailTheCall(t *testing.T) {
	backend := respond(fakeResult{text: validText})
	store := new(mocks.MockCache)
	store.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	store.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	d := New(testConfig(Tiers{
		config.TierFast: {provider("A", "groq", backend)},
	}), store, nil, nil)

	result, err := d.Complete(context.Background(), &models.CompletionRequest{Prompt: simplePrompt})
	require.NoError(t, err)
	assert.Equal(t, "A", result.Provider)
	assert.Equal(t, 1, backend.Calls())
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Len", mock.Anything)
}
