// Package deploy clones a template into many virtual machines using a
// bounded pool of concurrent workers.
package deploy

import (
	"fmt"
	"sort"
)

// Spec is the immutable description of one clone unit. Placement fields
// left empty fall back to the template's own placement on the endpoint.
type Spec struct {
	Name         string
	Datacenter   string
	Cluster      string
	ResourcePool string
	Folder       string
	Datastore    string

	// MAC overrides the clone's primary adapter address when set.
	MAC string
	// PostScript is run after the unit's pipeline with positional
	// identity arguments.
	PostScript string
}

// Defaults are the run-wide values a Spec starts from; CSV rows override
// them per unit.
type Defaults struct {
	Datacenter   string
	Cluster      string
	ResourcePool string
	Folder       string
	Datastore    string
	MAC          string
	PostScript   string
}

func (d Defaults) spec(name string) Spec {
	return Spec{
		Name:         name,
		Datacenter:   d.Datacenter,
		Cluster:      d.Cluster,
		ResourcePool: d.ResourcePool,
		Folder:       d.Folder,
		Datastore:    d.Datastore,
		MAC:          d.MAC,
		PostScript:   d.PostScript,
	}
}

// Generate builds the ordered work list <basename>-<start> through
// <basename>-<start+amount-1>, sorted by name.
func Generate(basename string, start, amount int, defaults Defaults) []Spec {
	names := make([]string, 0, amount)
	for i := 0; i < amount; i++ {
		names = append(names, fmt.Sprintf("%s-%d", basename, start+i))
	}
	sort.Strings(names)

	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		specs = append(specs, defaults.spec(name))
	}
	return specs
}
