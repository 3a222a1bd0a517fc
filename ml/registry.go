package ml

import (
	"errors"
	"fmt"
)

// Registry is the process-wide ordered set of inference adapters. It is
// built once at startup and never mutated afterwards, so reads need no
// locking.
type Registry struct {
	models []*Model
	byName map[string]*Model
}

func NewRegistry(models []*Model) (*Registry, error) {
	if len(models) == 0 {
		return nil, errors.New("at least one model is required")
	}
	byName := make(map[string]*Model, len(models))
	for _, model := range models {
		if _, exists := byName[model.Name()]; exists {
			return nil, fmt.Errorf("duplicate model name %q", model.Name())
		}
		byName[model.Name()] = model
	}
	return &Registry{models: models, byName: byName}, nil
}

// Models returns the adapters in registration order.
func (r *Registry) Models() []*Model {
	out := make([]*Model, len(r.models))
	copy(out, r.models)
	return out
}

func (r *Registry) Get(name string) (*Model, bool) {
	model, ok := r.byName[name]
	return model, ok
}

func (r *Registry) Len() int {
	return len(r.models)
}
