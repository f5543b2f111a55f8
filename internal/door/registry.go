package door

import (
	"fmt"

	"github.com/door-control/dcc/internal/config"
)

// Registry is the immutable name-to-mapping table. It is populated once
// before any request is served and never mutated, so lookups need no
// locking.
type Registry struct {
	doors []config.DoorMapping
}

// NewRegistry builds the registry from the validated config mappings,
// preserving their order.
func NewRegistry(doors []config.DoorMapping) *Registry {
	table := make([]config.DoorMapping, len(doors))
	copy(table, doors)
	return &Registry{doors: table}
}

// Resolve translates a caller-supplied name into a trusted mapping.
// Matching is exact and case-sensitive; with duplicate names the first
// configured mapping wins. A miss returns ErrUnknownDoor.
func (r *Registry) Resolve(name string) (*config.DoorMapping, error) {
	for i := range r.doors {
		if r.doors[i].Name == name {
			return &r.doors[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownDoor)
}

// Doors returns a copy of the mapping table, in config order.
func (r *Registry) Doors() []config.DoorMapping {
	table := make([]config.DoorMapping, len(r.doors))
	copy(table, r.doors)
	return table
}
