package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/screening/cache"
	"sentinel-hq/sentinel/pkg/screening/normalize"
	"sentinel-hq/sentinel/pkg/sources"
	"sentinel-hq/sentinel/pkg/telemetry/logging"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
)

// DefaultTTL is how long a fresh verdict stays cached when no TTL is
// configured.
const DefaultTTL = 24 * time.Hour

// defaultBatchConcurrency bounds how many names a batch run screens at once.
const defaultBatchConcurrency = 8

// Options configures an Engine.
type Options struct {
	// TTL is how long fresh verdicts stay cached. Zero means DefaultTTL.
	TTL time.Duration

	// BatchConcurrency bounds concurrent names in a batch run. Zero means
	// a default of 8.
	BatchConcurrency int

	// Metrics receives engine instrumentation. Nil disables it.
	Metrics *metrics.Collector

	// Logger receives engine logs. Nil means slog.Default.
	Logger *slog.Logger
}

// Engine screens names against every enabled watchlist source.
type Engine struct {
	registry *sources.Registry
	store    cache.Store
	metrics  *metrics.Collector
	logger   *slog.Logger

	ttl              time.Duration
	batchConcurrency int
}

// New creates an engine backed by the given source registry and verdict
// cache.
func New(registry *sources.Registry, store cache.Store, opts Options) *Engine {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = defaultBatchConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		registry:         registry,
		store:            store,
		metrics:          opts.Metrics,
		logger:           logger,
		ttl:              opts.TTL,
		batchConcurrency: opts.BatchConcurrency,
	}
}

// Registry returns the engine's source registry.
func (e *Engine) Registry() *sources.Registry {
	return e.registry
}

// Store returns the engine's verdict cache.
func (e *Engine) Store() cache.Store {
	return e.store
}

// TTL returns the configured verdict time-to-live.
func (e *Engine) TTL() time.Duration {
	return e.ttl
}

// Validate screens one name. Cached verdicts are served as long as they
// have not expired; otherwise every enabled source is checked concurrently
// and the aggregated verdict is cached.
//
// A name that normalizes to the empty string returns an InvalidInputError.
// Cache failures are logged and do not fail the run.
func (e *Engine) Validate(ctx context.Context, name, category string) (*screening.WatchlistResult, error) {
	start := time.Now()

	trimmed := strings.TrimSpace(name)
	normalized := normalize.Normalize(trimmed)
	if normalized == "" {
		return nil, &screening.InvalidInputError{
			Name:    name,
			Message: "name is empty after normalization",
		}
	}

	validationID := uuid.NewString()
	ctx = logging.WithValidationID(ctx, validationID)
	hashKey := normalize.HashKey(trimmed)

	if record, ok, err := e.store.Get(ctx, hashKey); err != nil {
		e.logger.WarnContext(ctx, "cache lookup failed, screening fresh",
			"validation_id", validationID,
			"error", err,
		)
	} else if ok {
		if e.metrics != nil {
			e.metrics.RecordCacheHit()
			e.metrics.RecordValidation(verdictLabel(record.IsBlocked), "cache", time.Since(start))
		}
		e.logger.DebugContext(ctx, "verdict served from cache",
			"validation_id", validationID,
			"blocked", record.IsBlocked,
		)
		result := record.Result()
		return &result, nil
	}

	if e.metrics != nil {
		e.metrics.RecordCacheMiss()
	}

	clients := e.registry.EnabledSources()
	checks := e.fanOut(ctx, clients, trimmed, category, validationID)

	result := e.aggregate(trimmed, clients, checks)

	record := &screening.CacheRecord{
		NameHash:   hashKey,
		FullName:   trimmed,
		IsBlocked:  result.IsBlocked,
		Sources:    result.Sources,
		Confidence: result.Confidence,
		Reasons:    result.Reasons,
		RawData:    result.RawData,
		CreatedAt:  result.LastUpdated,
		ExpiresAt:  result.LastUpdated.Add(e.ttl),
	}
	if err := e.store.Put(ctx, record); err != nil {
		e.logger.ErrorContext(ctx, "failed to cache verdict",
			"validation_id", validationID,
			"error", err,
		)
	}

	if e.metrics != nil {
		e.metrics.RecordValidation(verdictLabel(result.IsBlocked), "fresh", time.Since(start))
	}
	e.logger.InfoContext(ctx, "screening complete",
		"validation_id", validationID,
		"blocked", result.IsBlocked,
		"confidence", result.Confidence,
		"sources_checked", len(clients),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// sourceCheck is one source's outcome within a run.
type sourceCheck struct {
	result *screening.SourceCheckResult
	err    error
}

// fanOut checks the name against every client concurrently and returns the
// outcomes indexed like clients.
func (e *Engine) fanOut(ctx context.Context, clients []sources.Client, name, category, validationID string) []sourceCheck {
	checks := make([]sourceCheck, len(clients))

	var wg sync.WaitGroup
	for i, client := range clients {
		wg.Add(1)
		go func(i int, client sources.Client) {
			defer wg.Done()
			checks[i] = e.checkSource(ctx, client, name, category, validationID)
		}(i, client)
	}
	wg.Wait()

	return checks
}

// checkSource runs one source lookup, records metrics, and writes the audit
// log entry.
func (e *Engine) checkSource(ctx context.Context, client sources.Client, name, category, validationID string) sourceCheck {
	start := time.Now()
	result, err := client.Check(ctx, name, category)
	elapsed := time.Since(start)

	outcome := checkOutcome(result, err)
	if e.metrics != nil {
		e.metrics.RecordSourceCheck(client.Name(), outcome, elapsed)
		if err != nil {
			e.metrics.RecordSourceError(client.Name(), classifyError(err))
		}
		e.metrics.SetSourceHealth(client.Name(), client.Health().IsHealthy)
	}

	entry := &screening.CheckLog{
		Name:         name,
		Source:       client.Name(),
		Result:       outcome,
		ResponseTime: elapsed,
		Timestamp:    start,
	}
	if logErr := e.store.LogCheck(ctx, entry); logErr != nil {
		e.logger.WarnContext(ctx, "failed to write audit log entry",
			"validation_id", validationID,
			"source", client.Name(),
			"error", logErr,
		)
	}

	if err != nil {
		e.logger.WarnContext(ctx, "source check failed",
			"validation_id", validationID,
			"source", client.Name(),
			"error_type", classifyError(err),
			"error", err,
		)
		return sourceCheck{err: err}
	}

	return sourceCheck{result: result}
}

// aggregate folds per-source outcomes into one verdict. Sources are walked
// in registry order so blocking reasons come out deterministically.
func (e *Engine) aggregate(name string, clients []sources.Client, checks []sourceCheck) *screening.WatchlistResult {
	result := &screening.WatchlistResult{
		Name:        name,
		LastUpdated: time.Now().UTC(),
		RawData:     make(map[string]*screening.SourceCheckResult, len(clients)),
	}

	var blockedConfidence, clearConfidence float64
	for i, client := range clients {
		check := checks[i]
		if check.err != nil {
			// No data: the source can neither block nor clear.
			result.RawData[client.Name()] = nil
			continue
		}
		result.RawData[client.Name()] = check.result

		if check.result.IsBlocked {
			result.IsBlocked = true
			result.Sources = append(result.Sources, client.Name())
			result.Reasons = append(result.Reasons, check.result.Reasons...)
			if check.result.Confidence > blockedConfidence {
				blockedConfidence = check.result.Confidence
			}
		} else if check.result.Confidence > clearConfidence {
			clearConfidence = check.result.Confidence
		}
	}

	if result.IsBlocked {
		result.Confidence = blockedConfidence
	} else {
		result.Confidence = clearConfidence
	}

	return result
}

// BatchItem is one name's outcome within a batch run.
type BatchItem struct {
	// Name is the candidate name as submitted.
	Name string `json:"name"`

	// Result is the verdict, nil when Err is set.
	Result *screening.WatchlistResult `json:"result,omitempty"`

	// Err is the per-name failure, nil on success.
	Err error `json:"-"`
}

// ValidateBatch screens several names concurrently and returns one item per
// input name, in input order. A failure for one name does not affect the
// others.
func (e *Engine) ValidateBatch(ctx context.Context, names []string, category string) []BatchItem {
	if e.metrics != nil {
		e.metrics.RecordBatch(len(names))
	}

	items := make([]BatchItem, len(names))
	sem := make(chan struct{}, e.batchConcurrency)

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := e.Validate(ctx, name, category)
			items[i] = BatchItem{Name: name, Result: result, Err: err}
		}(i, name)
	}
	wg.Wait()

	return items
}

// Stats reports cache and source activity over the last 24 hours.
func (e *Engine) Stats(ctx context.Context) (*screening.Stats, error) {
	cached, err := e.store.CountCached(ctx)
	if err != nil {
		return nil, err
	}
	blocked, err := e.store.CountBlocked(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := e.store.CountRecentChecks(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.SetCachedEntries(cached)
	}

	return &screening.Stats{
		TotalCached:        cached,
		TotalBlocked:       blocked,
		RecentValidations:  recent,
		EnabledSources:     e.registry.EnabledNames(),
		CacheDurationHours: int(e.ttl.Hours()),
	}, nil
}

// ClearCache drops every cached verdict. Subsequent lookups screen fresh.
func (e *Engine) ClearCache(ctx context.Context) error {
	return e.store.Clear(ctx)
}

// verdictLabel maps a blocked flag to its metric label.
func verdictLabel(blocked bool) string {
	if blocked {
		return "blocked"
	}
	return "clear"
}

// checkOutcome maps a source answer to its audit and metric label.
func checkOutcome(result *screening.SourceCheckResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case result.IsBlocked:
		return "match"
	default:
		return "clear"
	}
}

// classifyError maps a source error to a coarse type label.
func classifyError(err error) string {
	var (
		timeoutErr *sources.TimeoutError
		rateErr    *sources.RateLimitError
		authErr    *sources.AuthError
		parseErr   *sources.ParseError
		sourceErr  *sources.SourceError
	)
	switch {
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &rateErr):
		return "rate_limited"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &sourceErr):
		return "http"
	default:
		return "unknown"
	}
}
