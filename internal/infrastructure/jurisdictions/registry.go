// Package jurisdictions implements the per-state planning data resolvers.
// Each resolver maps a point to normalized zoning, development controls, and
// overlays by interrogating that state's public spatial services through the
// geoquery gateway.  States without mapped services fall back to a generic
// resolver that returns clearly-labelled defaults.
package jurisdictions

import (
	"github.com/landgauge/landgauge/internal/domain/planning"
	"github.com/landgauge/landgauge/internal/infrastructure/geoquery"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
)

// Registry owns one resolver per supported jurisdiction.
type Registry struct {
	resolvers map[planning.State]planning.JurisdictionResolver
	fallback  func(planning.State) planning.JurisdictionResolver
}

// NewRegistry wires the state resolvers over a shared spatial gateway.  NSW
// and QLD get live resolvers; every other state resolves through the generic
// fallback.
func NewRegistry(gateway geoquery.Service, log logging.Logger) *Registry {
	return &Registry{
		resolvers: map[planning.State]planning.JurisdictionResolver{
			planning.StateNSW: NewNSWResolver(gateway, log.Named("nsw")),
			planning.StateQLD: NewQLDResolver(gateway, log.Named("qld")),
		},
		fallback: func(state planning.State) planning.JurisdictionResolver {
			return NewGenericResolver(state, log.Named("generic"))
		},
	}
}

// Resolve returns the resolver for a state.  Unsupported states get the
// generic resolver, never an error; validation of the state code happens at
// the request boundary.
func (r *Registry) Resolve(state planning.State) planning.JurisdictionResolver {
	if resolver, ok := r.resolvers[state]; ok {
		return resolver
	}
	return r.fallback(state)
}

// HasLiveData reports whether a state is backed by mapped spatial services.
func (r *Registry) HasLiveData(state planning.State) bool {
	_, ok := r.resolvers[state]
	return ok
}
