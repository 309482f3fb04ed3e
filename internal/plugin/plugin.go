// Package plugin implements the checkout lifecycle hook mechanism.
// Third parties register plugins that run before an order is created
// at the provider, after it was created, and when the shopper lands on
// the confirmation page. BeforeCreate hooks may rewrite the payload
// and abort the submission; the later stages observe results and kick
// off side-effect work, which is always dispatched to the task queue
// rather than run inline.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/backend-kco/internal/kco"
)

// Created describes an order successfully created at the provider.
type Created struct {
	StoreCode string
	OrderID   string
	Order     kco.Order
}

// Confirmed describes an order the provider reported as completed.
type Confirmed struct {
	StoreCode string
	OrderID   string
	Order     kco.Order
}

// Plugin is a named set of optional lifecycle hooks.
type Plugin struct {
	Name           string
	BeforeCreate   func(ctx context.Context, order *kco.Order) error
	AfterCreate    func(ctx context.Context, created Created) error
	OnConfirmation func(ctx context.Context, confirmed Confirmed) error
}

// Registry holds the registered plugins in registration order.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
}

// NewRegistry returns a registry preloaded with the given plugins.
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{}
	for _, p := range plugins {
		r.Add(p)
	}
	return r
}

// Add registers a plugin. Plugins run in registration order.
func (r *Registry) Add(p Plugin) {
	if p.Name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, p)
}

func (r *Registry) snapshot() []Plugin {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}

// BeforeCreate runs the pre-submission hooks. The first error aborts
// the chain and the submission; later plugins do not run.
func (r *Registry) BeforeCreate(ctx context.Context, order *kco.Order) error {
	for _, p := range r.snapshot() {
		if p.BeforeCreate == nil {
			continue
		}
		if err := p.BeforeCreate(ctx, order); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name, err)
		}
	}
	return nil
}

// AfterCreate notifies all plugins of a created order. Every hook runs
// regardless of earlier failures; errors are joined for the caller to
// log.
func (r *Registry) AfterCreate(ctx context.Context, created Created) error {
	var joined error
	for _, p := range r.snapshot() {
		if p.AfterCreate == nil {
			continue
		}
		if err := p.AfterCreate(ctx, created); err != nil {
			joined = errors.Join(joined, fmt.Errorf("plugin %s: %w", p.Name, err))
		}
	}
	return joined
}

// OnConfirmation notifies all plugins of a confirmed order, with the
// same all-run error-join semantics as AfterCreate.
func (r *Registry) OnConfirmation(ctx context.Context, confirmed Confirmed) error {
	var joined error
	for _, p := range r.snapshot() {
		if p.OnConfirmation == nil {
			continue
		}
		if err := p.OnConfirmation(ctx, confirmed); err != nil {
			joined = errors.Join(joined, fmt.Errorf("plugin %s: %w", p.Name, err))
		}
	}
	return joined
}
