package portal

import (
	"fmt"
)

// Registry keeps portals in registration order.
type Registry struct {
	portals map[string]Portal
	order   []string
}

func NewRegistry(portals ...Portal) *Registry {
	r := &Registry{portals: make(map[string]Portal, len(portals))}
	for _, p := range portals {
		if _, ok := r.portals[p.Key()]; ok {
			continue
		}
		r.portals[p.Key()] = p
		r.order = append(r.order, p.Key())
	}
	return r
}

func (r *Registry) Get(key string) (Portal, error) {
	p, ok := r.portals[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPortal, key, r.order)
	}
	return p, nil
}

func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// ForURL picks the portal whose domain appears in the URL.
func (r *Registry) ForURL(url string) (Portal, bool) {
	for _, key := range r.order {
		if p := r.portals[key]; p.MatchesURL(url) {
			return p, true
		}
	}
	return nil, false
}
