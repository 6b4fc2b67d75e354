package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/config"
	"www.github.com/Wanderer0074348/Yahmi/src/metrics"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
	"www.github.com/Wanderer0074348/Yahmi/src/router"
	"www.github.com/Wanderer0074348/Yahmi/src/utils"
)

// Provider is one backend in a tier, owned by a rate-limited service.
type Provider struct {
	Name    string
	Service string
	Speed   string
	Backend models.TextBackend
}

// Tiers groups providers by tier name, in preference order.
type Tiers map[string][]Provider

type Config struct {
	Tiers          Tiers
	Ceilings       map[string]int
	Pricing        map[string]utils.Pricing
	DefaultCeiling int
	RateWindow     time.Duration
	MaxAttempts    int
	RetryBaseDelay time.Duration
	LowConfidence  float64
	// FallbackTier is the tier of the second pass. Empty repeats the primary tier.
	FallbackTier   string
	CacheKeyPrefix int
}

// NewConfig derives the dispatcher configuration from the application config.
func NewConfig(cfg *config.Config, tiers Tiers) Config {
	ceilings := make(map[string]int, len(cfg.Services))
	pricing := make(map[string]utils.Pricing, len(cfg.Services))
	for name, svc := range cfg.Services {
		ceilings[name] = svc.RequestsPerMinute
		pricing[name] = utils.Pricing{InputPer1M: svc.InputCostPer1M, OutputPer1M: svc.OutputCostPer1M}
	}

	return Config{
		Tiers:          tiers,
		Ceilings:       ceilings,
		Pricing:        pricing,
		DefaultCeiling: cfg.Dispatcher.DefaultCeiling,
		RateWindow:     cfg.Dispatcher.RateWindow,
		MaxAttempts:    cfg.Dispatcher.MaxAttempts,
		RetryBaseDelay: cfg.Dispatcher.RetryBaseDelay,
		LowConfidence:  cfg.Dispatcher.LowConfidence,
		FallbackTier:   cfg.Dispatcher.FallbackTier,
		CacheKeyPrefix: cfg.Dispatcher.CacheKeyPrefix,
	}
}

// Dispatcher selects a provider tier for each prompt, retries and rotates
// providers, validates what comes back and caches validated results.
type Dispatcher struct {
	config   Config
	cache    models.CompletionCache
	limiter  *RateLimiter
	strategy router.RoutingStrategy
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func New(cfg Config, cache models.CompletionCache, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	if cfg.LowConfidence <= 0 {
		cfg.LowConfidence = 0.3
	}
	if cfg.CacheKeyPrefix <= 0 {
		cfg.CacheKeyPrefix = router.CacheKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		config:   cfg,
		cache:    cache,
		limiter:  NewRateLimiter(cfg.Ceilings, cfg.DefaultCeiling, cfg.RateWindow),
		strategy: router.NewTierStrategy(),
		metrics:  m,
		logger:   logger,
	}
}

// RateLimiter exposes the per-service windows, mainly for inspection.
func (d *Dispatcher) RateLimiter() *RateLimiter {
	return d.limiter
}

// Complete returns a validated completion for req, from cache when possible.
func (d *Dispatcher) Complete(ctx context.Context, req *models.CompletionRequest) (*models.Completion, error) {
	start := time.Now()
	key := router.GenerateCacheKey(req.Prompt, req.Options, d.config.CacheKeyPrefix)

	if cached := d.lookup(ctx, key); cached != nil {
		cached.CacheHit = true
		cached.Latency = time.Since(start)
		cached.Usage = utils.EstimateUsage(cached.Service, req.Prompt, cached.Text, d.config.Pricing[cached.Service], true)
		d.metrics.RecordCacheHit()
		d.metrics.RecordDispatch(cached.Tier, "cache_hit")
		return cached, nil
	}
	d.metrics.RecordCacheMiss()

	complexity := router.Classify(req.Prompt)
	primary := d.strategy.Tier(complexity)

	passes := []string{primary}
	if complexity != router.ComplexitySimple {
		fallback := d.config.FallbackTier
		if fallback == "" {
			fallback = primary
		}
		passes = append(passes, fallback)
	}

	d.logger.Info("Dispatching completion",
		zap.String("complexity", string(complexity)),
		zap.String("tier", primary),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	for i, tier := range passes {
		if i > 0 {
			d.logger.Warn("Primary tier exhausted, running fallback pass",
				zap.String("primary", primary),
				zap.String("fallback", tier),
			)
		}

		completion, err := d.runTier(ctx, tier, req)
		if err != nil {
			d.metrics.RecordDispatch(tier, "canceled")
			return nil, err
		}
		if completion == nil {
			continue
		}

		completion.Complexity = string(complexity)
		completion.Latency = time.Since(start)
		completion.Timestamp = time.Now()
		completion.Usage = utils.EstimateUsage(completion.Service, req.Prompt, completion.Text, d.config.Pricing[completion.Service], false)
		d.metrics.RecordUsage(completion.Service, completion.Usage.InputTokens, completion.Usage.OutputTokens, completion.Usage.Cost)

		d.store(ctx, key, completion)
		d.metrics.RecordDispatch(tier, "success")
		return completion, nil
	}

	d.metrics.RecordDispatch(primary, "failed")
	d.logger.Error("All providers failed",
		zap.String("complexity", string(complexity)),
		zap.Strings("passes", passes),
	)
	return nil, ErrAllProvidersFailed
}

func (d *Dispatcher) lookup(ctx context.Context, key string) *models.Completion {
	if d.cache == nil {
		return nil
	}

	cached, err := d.cache.Get(ctx, key)
	if err != nil {
		d.logger.Warn("Cache lookup failed", zap.Error(err))
		return nil
	}
	return cached
}

func (d *Dispatcher) store(ctx context.Context, key string, completion *models.Completion) {
	if d.cache == nil {
		return
	}

	if err := d.cache.Set(ctx, key, completion); err != nil {
		d.logger.Warn("Failed to cache completion", zap.Error(err))
		return
	}
	if n, err := d.cache.Len(ctx); err == nil {
		d.metrics.RecordCacheSize(n)
	}
}

// candidates drops providers whose service is at its ceiling, unless that
// would leave nothing to try.
func (d *Dispatcher) candidates(tier string) []Provider {
	all := d.config.Tiers[tier]

	available := make([]Provider, 0, len(all))
	for _, p := range all {
		if d.limiter.Available(p.Service) {
			available = append(available, p)
		}
	}

	if len(available) == 0 && len(all) > 0 {
		d.logger.Warn("All providers rate limited, using whole tier", zap.String("tier", tier))
		return all
	}
	return available
}

// runTier tries each candidate of tier in order. It returns (nil, nil) when the
// tier is exhausted and an error only when ctx is done.
func (d *Dispatcher) runTier(ctx context.Context, tier string, req *models.CompletionRequest) (*models.Completion, error) {
	for _, provider := range d.candidates(tier) {
		text, validation, err := d.attemptProvider(ctx, provider, req)
		if err == nil {
			return &models.Completion{
				Text:     text,
				Provider: provider.Name,
				Service:  provider.Service,
				Tier:     tier,
				Score:    validation.Score,
			}, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("dispatch interrupted: %w", ctxErr)
		}

		var invalid *InvalidResponseError
		if errors.As(err, &invalid) && invalid.Validation.Score > d.config.LowConfidence {
			d.logger.Warn("Borderline response, not retrying provider",
				zap.String("provider", provider.Name),
				zap.String("reason", invalid.Validation.Reason),
				zap.Float64("score", invalid.Validation.Score),
			)
		}

		d.logger.Warn("Provider exhausted, trying next",
			zap.String("provider", provider.Name),
			zap.String("tier", tier),
			zap.Error(err),
		)
	}

	return nil, nil
}

// attemptProvider calls one provider up to MaxAttempts times. Only rate-limit
// and timeout errors are retried, with exponential backoff.
func (d *Dispatcher) attemptProvider(ctx context.Context, p Provider, req *models.CompletionRequest) (string, models.Validation, error) {
	var text string
	var validation models.Validation
	attempt := 0

	backoff := retry.WithMaxRetries(uint64(d.config.MaxAttempts-1), retry.NewExponential(d.config.RetryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if !d.limiter.Check(p.Service) {
			d.metrics.RecordRateLimited(p.Service)
		}

		d.logger.Debug("Trying provider",
			zap.String("provider", p.Name),
			zap.String("speed", p.Speed),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", d.config.MaxAttempts),
		)

		start := time.Now()
		out, err := p.Backend.Generate(ctx, req.Prompt, req.Options)
		duration := time.Since(start)
		if err != nil {
			transient := isTransient(err)
			d.metrics.RecordAttempt(p.Name, p.Service, "error", duration)
			d.logger.Warn("Provider call failed",
				zap.String("provider", p.Name),
				zap.Int("attempt", attempt),
				zap.Bool("transient", transient),
				zap.Error(err),
			)
			if transient {
				return retry.RetryableError(err)
			}
			return err
		}

		v := Validate(out, req.Format)
		if !v.Valid {
			d.metrics.RecordAttempt(p.Name, p.Service, "invalid", duration)
			return &InvalidResponseError{Provider: p.Name, Validation: v}
		}

		d.metrics.RecordAttempt(p.Name, p.Service, "valid", duration)
		d.logger.Info("Provider succeeded",
			zap.String("provider", p.Name),
			zap.Duration("duration", duration),
			zap.Float64("score", v.Score),
		)
		text = out
		validation = v
		return nil
	})

	return text, validation, err
}

// Stream emits text from the first provider whose stream starts. Complex
// prompts try the advanced tier before the fast one; everything else streams
// from the fast tier. Streamed text is neither validated nor cached.
func (d *Dispatcher) Stream(ctx context.Context, prompt string, opts models.GenerationOptions, onChunk func(string) error) error {
	complexity := router.Classify(prompt)
	d.logger.Info("Streaming completion", zap.String("complexity", string(complexity)))

	for _, tier := range router.StreamTiers(complexity) {
		for _, p := range d.candidates(tier) {
			if !d.limiter.Check(p.Service) {
				d.metrics.RecordRateLimited(p.Service)
			}

			started := false
			emit := func(chunk string) error {
				started = true
				return onChunk(chunk)
			}

			start := time.Now()
			err := streamFrom(ctx, p.Backend, prompt, opts, emit)
			if err == nil {
				d.metrics.RecordAttempt(p.Name, p.Service, "valid", time.Since(start))
				d.metrics.RecordDispatch(tier, "stream")
				return nil
			}

			d.metrics.RecordAttempt(p.Name, p.Service, "error", time.Since(start))
			if started {
				return fmt.Errorf("stream from %s interrupted: %w", p.Name, err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("stream interrupted: %w", ctxErr)
			}

			d.logger.Warn("Streaming failed, trying next provider",
				zap.String("provider", p.Name),
				zap.Error(err),
			)
		}
	}

	d.metrics.RecordDispatch(config.TierFast, "stream_failed")
	return ErrAllProvidersFailed
}

func streamFrom(ctx context.Context, backend models.TextBackend, prompt string, opts models.GenerationOptions, onChunk func(string) error) error {
	if sb, ok := backend.(models.StreamingBackend); ok {
		return sb.Stream(ctx, prompt, opts, onChunk)
	}

	text, err := backend.Generate(ctx, prompt, opts)
	if err != nil {
		return err
	}
	return onChunk(text)
}
