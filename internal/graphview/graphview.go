// Package graphview turns a lookup result into the star-shaped node/link
// structure consumed by the force-directed renderer.
package graphview

import (
	"github.com/ajitpratap0/castgraph/internal/models"
)

const (
	// DefaultMaxRelated caps the related nodes drawn for one focal entity.
	DefaultMaxRelated = 29

	// DefaultLinkDistance is the desired focal-to-related link length.
	DefaultLinkDistance = 100

	focalWeight            = 20
	relatedWeight          = 15
	focalCollisionRadius   = 30
	relatedCollisionRadius = 18

	chargeStrength = -300
	nodeRelSize    = 8
)

// Options tunes Build. The zero value uses the defaults.
type Options struct {
	MaxRelated   int
	LinkDistance float64
}

func (o Options) withDefaults() Options {
	if o.MaxRelated <= 0 {
		o.MaxRelated = DefaultMaxRelated
	}
	if o.LinkDistance <= 0 {
		o.LinkDistance = DefaultLinkDistance
	}
	return o
}

// Build maps result into a GraphView. The focal entity becomes node 0 and
// each of the first MaxRelated related entities, in backend order, gets one
// link back to it. Related entities are never linked to each other.
// Truncated is set when the backend returned more than MaxRelated, counting
// entries that are later skipped.
//
// Related entities without a name, or sharing a natural key with an earlier
// node, are skipped so node IDs stay unique.
func Build(result models.DomainResult, role models.Role, opts Options) models.GraphView {
	opts = opts.withDefaults()

	view := models.GraphView{
		Total:     len(result.Related),
		Truncated: len(result.Related) > opts.MaxRelated,
		Hints:     models.GraphHints{ChargeStrength: chargeStrength, NodeRelSize: nodeRelSize},
	}
	capacity := min(len(result.Related), opts.MaxRelated)

	focal := models.GraphNode{
		ID:          result.Focal.Name,
		Label:       result.Focal.Name,
		Role:        role,
		Weight:      focalWeight,
		Year:        result.Focal.Year,
		LayoutHints: models.LayoutHints{CollisionRadius: focalCollisionRadius},
	}
	view.Nodes = make([]models.GraphNode, 0, capacity+1)
	view.Links = make([]models.GraphLink, 0, capacity)
	view.Nodes = append(view.Nodes, focal)

	seen := map[string]struct{}{focal.ID: {}}
	for _, e := range result.Related {
		if _, dup := seen[e.Name]; dup || e.Name == "" {
			continue
		}
		if len(view.Links) == opts.MaxRelated {
			break
		}
		seen[e.Name] = struct{}{}
		view.Nodes = append(view.Nodes, models.GraphNode{
			ID:          e.Name,
			Label:       e.Name,
			Role:        role.Opposite(),
			Weight:      relatedWeight,
			Year:        e.Year,
			LayoutHints: models.LayoutHints{CollisionRadius: relatedCollisionRadius},
		})
		view.Links = append(view.Links, models.GraphLink{
			Source:          focal.ID,
			Target:          e.Name,
			DesiredDistance: opts.LinkDistance,
		})
	}
	return view
}
