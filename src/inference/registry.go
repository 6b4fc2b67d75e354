package inference

import (
	"fmt"

	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/config"
	"www.github.com/Wanderer0074348/Yahmi/src/dispatcher"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

// Registry builds provider backends from the service and tier tables. A
// (service, model) pair listed in several tiers shares one backend.
type Registry struct {
	backends map[string]models.StreamingBackend
	tiers    dispatcher.Tiers
	logger   *zap.Logger
}

func NewRegistry(cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		backends: make(map[string]models.StreamingBackend),
		tiers:    make(dispatcher.Tiers),
		logger:   logger,
	}

	total := 0
	for _, tier := range []string{config.TierFast, config.TierBalanced, config.TierAdvanced} {
		for _, p := range cfg.Tiers.ByName(tier) {
			svc, ok := cfg.Services[p.Service]
			if !ok {
				return nil, fmt.Errorf("provider %s references unknown service %q", p.Name, p.Service)
			}
			if svc.APIKey == "" {
				logger.Warn("Skipping provider without API key",
					zap.String("provider", p.Name),
					zap.String("service", p.Service),
				)
				continue
			}

			backend, err := r.backend(p, svc)
			if err != nil {
				return nil, err
			}

			r.tiers[tier] = append(r.tiers[tier], dispatcher.Provider{
				Name:    p.Name,
				Service: p.Service,
				Speed:   p.Speed,
				Backend: backend,
			})
			total++
		}
	}

	if total == 0 {
		return nil, fmt.Errorf("no providers configured (check %v)", cfg.MissingKeys())
	}

	return r, nil
}

func (r *Registry) backend(p config.ProviderConfig, svc config.ServiceConfig) (models.StreamingBackend, error) {
	key := p.Service + "/" + p.Model
	if b, ok := r.backends[key]; ok {
		return b, nil
	}

	var b models.StreamingBackend
	switch svc.Driver {
	case config.DriverOpenAI:
		b = NewOpenAIBackend(p.Name, svc.BaseURL, svc.APIKey, p.Model, svc.Timeout)
	case config.DriverLangChain, "":
		lc, err := NewLangChainBackend(p.Name, svc.BaseURL, svc.APIKey, p.Model, svc.Timeout)
		if err != nil {
			return nil, err
		}
		b = lc
	default:
		return nil, fmt.Errorf("service %s has unknown driver %q", p.Service, svc.Driver)
	}

	r.backends[key] = b
	r.logger.Info("Provider backend ready",
		zap.String("provider", p.Name),
		zap.String("service", p.Service),
		zap.String("driver", svc.Driver),
	)
	return b, nil
}

// Tiers returns the dispatcher tier table.
func (r *Registry) Tiers() dispatcher.Tiers {
	return r.tiers
}

// BackendCount is the number of distinct backends created.
func (r *Registry) BackendCount() int {
	return len(r.backends)
}
