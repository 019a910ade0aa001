package indicator

import (
	"sync"

	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// Registry manages all available indicator providers.
type Registry interface {
	Register(indicator Indicator) error
	Get(name Type) (Indicator, error)
	List() []Type
	Remove(name Type) error
}

type registry struct {
	indicators map[Type]Indicator
	mu         sync.RWMutex
}

// NewRegistry creates an empty indicator registry.
func NewRegistry() Registry {
	return &registry{
		indicators: make(map[Type]Indicator),
		mu:         sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry with the built-in indicators
// registered.
func NewDefaultRegistry() Registry {
	r := NewRegistry()

	// Registration of built-ins cannot collide.
	_ = r.Register(NewEMA())
	_ = r.Register(NewRSI())
	_ = r.Register(NewMACD())

	return r
}

// Register adds an indicator to the registry.
func (r *registry) Register(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists,
			"indicator with name %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

// Get retrieves an indicator by name.
func (r *registry) Get(name Type) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound,
			"indicator with name %s not found", name)
	}

	return indicator, nil
}

// List returns all registered indicator names.
func (r *registry) List() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]Type, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	return names
}

// Remove removes an indicator from the registry.
func (r *registry) Remove(name Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound,
			"indicator with name %s not found", name)
	}

	delete(r.indicators, name)

	return nil
}
