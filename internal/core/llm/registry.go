package llm

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/core/embeddings"
	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
	"github.com/lueurxax/kenter-news-bot/internal/platform/settings"
)

// Registry errors.
var (
	ErrNoProvidersAvailable = errors.New("no LLM providers available")
	ErrAllProvidersFailed   = errors.New("all LLM providers failed")
)

// Registry manages LLM providers with task-aware fallback.
type Registry struct {
	mu              sync.RWMutex
	providers       map[ProviderName]Provider
	order           []ProviderName // Priority order (highest first)
	circuitBreakers map[ProviderName]*embeddings.CircuitBreaker
	taskConfig      map[TaskType]TaskProviderChain
	overrides       map[TaskType]ProviderModel
	logger          *zerolog.Logger
}

// NewRegistry creates a new provider registry.
func NewRegistry(taskConfig map[TaskType]TaskProviderChain, logger *zerolog.Logger) *Registry {
	if taskConfig == nil {
		taskConfig = make(map[TaskType]TaskProviderChain)
	}

	return &Registry{
		providers:       make(map[ProviderName]Provider),
		circuitBreakers: make(map[ProviderName]*embeddings.CircuitBreaker),
		taskConfig:      taskConfig,
		overrides:       make(map[TaskType]ProviderModel),
		logger:          logger,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider, cfg embeddings.CircuitBreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}

	r.providers[name] = p
	r.circuitBreakers[name] = embeddings.NewCircuitBreaker(cfg, r.logger)

	sort.SliceStable(r.order, func(i, j int) bool {
		return r.providers[r.order[i]].Priority() > r.providers[r.order[j]].Priority()
	})

	observability.LLMCircuitBreakerOpen.WithLabelValues(string(name)).Set(0)

	r.logger.Info().
		Str(logKeyProvider, string(name)).
		Int("priority", p.Priority()).
		Msg("registered LLM provider")
}

// ProviderCount returns the number of registered providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// SetTaskOverride pins a task to a provider and/or model. An empty override clears it.
func (r *Registry) SetTaskOverride(taskType TaskType, pm ProviderModel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pm.Provider == "" && pm.Model == "" {
		delete(r.overrides, taskType)
		return
	}

	r.overrides[taskType] = pm
}

// SettingsReader reads JSON settings from the database.
type SettingsReader interface {
	GetSetting(ctx context.Context, key string, target interface{}) error
}

// LoadOverridesFromDB applies the llm_override setting, a map of task name to provider/model.
func (r *Registry) LoadOverridesFromDB(ctx context.Context, reader SettingsReader) {
	var overrides map[string]settings.LLMOverride

	if err := reader.GetSetting(ctx, settings.SettingLLMOverride, &overrides); err != nil {
		r.logger.Debug().Err(err).Msg("no LLM overrides loaded")
		return
	}

	for task, o := range overrides {
		taskType := TaskType(task)

		r.mu.RLock()
		_, known := r.taskConfig[taskType]
		r.mu.RUnlock()

		if !known {
			r.logger.Warn().Str(logKeyTask, task).Msg("ignoring override for unknown task")
			continue
		}

		r.SetTaskOverride(taskType, ProviderModel{Provider: ProviderName(o.Provider), Model: o.Model})

		r.logger.Info().
			Str(logKeyTask, task).
			Str(logKeyProvider, o.Provider).
			Str(logKeyModel, o.Model).
			Msg("loaded task override from DB")
	}
}

// RankKeywords implements Client with task-aware fallback.
func (r *Registry) RankKeywords(ctx context.Context, category string, titles, hints []string, limit int, model string) ([]RankedKeyword, error) {
	return executeWithTaskFallback(r, TaskTypeRankKeywords, model, func(p Provider, m string) ([]RankedKeyword, error) {
		return p.RankKeywords(ctx, category, titles, hints, limit, m)
	})
}

// Summarize implements Client with task-aware fallback.
func (r *Registry) Summarize(ctx context.Context, keyword string, texts []string, model string) (Summary, error) {
	return executeWithTaskFallback(r, TaskTypeSummarize, model, func(p Provider, m string) (Summary, error) {
		return p.Summarize(ctx, keyword, texts, m)
	})
}

// TranslateText implements Client with task-aware fallback.
func (r *Registry) TranslateText(ctx context.Context, text, targetLanguage, model string) (string, error) {
	return executeWithTaskFallback(r, TaskTypeTranslate, model, func(p Provider, m string) (string, error) {
		return p.TranslateText(ctx, text, targetLanguage, m)
	})
}

// getProviderChainForTask returns the override first, then the task chain,
// then every other registered provider with its default model.
func (r *Registry) getProviderChainForTask(taskType TaskType) []ProviderModel {
	r.mu.RLock()
	taskChain, hasConfig := r.taskConfig[taskType]
	override, hasOverride := r.overrides[taskType]
	order := append([]ProviderName(nil), r.order...)
	r.mu.RUnlock()

	var chain []ProviderModel

	if hasConfig {
		chain = taskChain.GetProviderChain()
	}

	if hasOverride {
		chain = applyOverride(chain, override)
	}

	seen := make(map[ProviderName]bool, len(chain))
	out := make([]ProviderModel, 0, len(chain)+len(order))

	for _, pm := range chain {
		if seen[pm.Provider] {
			continue
		}

		seen[pm.Provider] = true
		out = append(out, pm)
	}

	for _, name := range order {
		if !seen[name] {
			out = append(out, ProviderModel{Provider: name})
			seen[name] = true
		}
	}

	return out
}

// applyOverride moves the overridden provider to the front. A model-only
// override replaces the model of the chain head.
func applyOverride(chain []ProviderModel, o ProviderModel) []ProviderModel {
	if o.Provider == "" {
		if len(chain) == 0 {
			return chain
		}

		head := chain[0]
		head.Model = o.Model

		return append([]ProviderModel{head}, chain[1:]...)
	}

	return append([]ProviderModel{o}, chain...)
}

// executeWithTaskFallback is a generic helper for task-aware fallback execution.
// modelOverride only applies to the head of the chain; fallbacks keep their
// configured models.
func executeWithTaskFallback[T any](r *Registry, taskType TaskType, modelOverride string, fn func(Provider, string) (T, error)) (T, error) {
	providerModels := r.getProviderChainForTask(taskType)

	var zero T

	if len(providerModels) == 0 {
		return zero, ErrNoProvidersAvailable
	}

	var (
		errs          []error
		firstProvider ProviderName
	)

	for i, pm := range providerModels {
		override := ""
		if i == 0 {
			override = modelOverride
		}

		result, attempted, err := tryProviderExec(r, pm, override, taskType, fn)
		if !attempted {
			continue
		}

		if err != nil {
			errs = append(errs, err)

			if firstProvider == "" {
				firstProvider = pm.Provider
			}

			continue
		}

		if firstProvider != "" {
			observability.LLMFallbacks.WithLabelValues(string(firstProvider), string(pm.Provider), string(taskType)).Inc()

			r.logger.Info().
				Str(logKeyProvider, string(pm.Provider)).
				Str("from_provider", string(firstProvider)).
				Str(logKeyTask, string(taskType)).
				Msg("used fallback LLM provider")
		}

		return result, nil
	}

	if len(errs) > 0 {
		return zero, errors.Join(append([]error{ErrAllProvidersFailed}, errs...)...)
	}

	return zero, ErrNoProvidersAvailable
}

// tryProviderExec runs fn with one provider. attempted is false when the
// provider is missing, unavailable or behind an open circuit.
func tryProviderExec[T any](r *Registry, pm ProviderModel, modelOverride string, taskType TaskType, fn func(Provider, string) (T, error)) (result T, attempted bool, err error) {
	r.mu.RLock()
	p, exists := r.providers[pm.Provider]
	cb := r.circuitBreakers[pm.Provider]
	r.mu.RUnlock()

	if !exists || !p.IsAvailable() {
		return result, false, nil
	}

	if !cb.CanAttempt() {
		r.logger.Debug().
			Str(logKeyProvider, string(pm.Provider)).
			Str(logKeyTask, string(taskType)).
			Msg(logMsgCircuitBreakerOpen)

		return result, false, nil
	}

	model := pm.Model
	if modelOverride != "" {
		model = modelOverride
	}

	start := time.Now()
	result, err = fn(p, model)
	duration := time.Since(start)

	observability.LLMRequestDuration.WithLabelValues(string(pm.Provider), string(taskType)).Observe(duration.Seconds())

	if err != nil {
		observability.LLMRequests.WithLabelValues(string(pm.Provider), string(taskType), observability.StatusError).Inc()

		if cb.RecordFailure(string(pm.Provider)) {
			observability.LLMCircuitBreakerOpen.WithLabelValues(string(pm.Provider)).Set(1)
		}

		r.logger.Warn().
			Err(err).
			Str(logKeyProvider, string(pm.Provider)).
			Str(logKeyModel, model).
			Str(logKeyTask, string(taskType)).
			Dur("duration", duration).
			Msg("LLM provider failed, trying fallback")

		return result, true, err
	}

	cb.RecordSuccess()
	observability.LLMRequests.WithLabelValues(string(pm.Provider), string(taskType), observability.StatusSuccess).Inc()
	observability.LLMCircuitBreakerOpen.WithLabelValues(string(pm.Provider)).Set(0)

	return result, true, nil
}

// ProviderStatus holds status information for a provider.
type ProviderStatus struct {
	Name             ProviderName `json:"name"`
	Priority         int          `json:"priority"`
	Available        bool         `json:"available"`
	CircuitBreakerOK bool         `json:"circuit_breaker_ok"`
}

// GetProviderStatuses returns status information for all registered providers.
func (r *Registry) GetProviderStatuses() []ProviderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]ProviderStatus, 0, len(r.order))

	for _, name := range r.order {
		p := r.providers[name]

		statuses = append(statuses, ProviderStatus{
			Name:             name,
			Priority:         p.Priority(),
			Available:        p.IsAvailable(),
			CircuitBreakerOK: r.circuitBreakers[name].CanAttempt(),
		})
	}

	return statuses
}

var _ Client = (*Registry)(nil)
