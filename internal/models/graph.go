package models

// LayoutHints are advisory parameters for the force-directed renderer.
type LayoutHints struct {
	CollisionRadius float64 `json:"collision_radius"`
}

// GraphNode is one renderable node. ID equals the entity's natural key.
type GraphNode struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Role        Role        `json:"role"`
	Weight      float64     `json:"val"`
	Year        string      `json:"year,omitempty"`
	LayoutHints LayoutHints `json:"layout_hints"`
}

// GraphLink connects the focal node to one related node.
type GraphLink struct {
	Source          string  `json:"source"`
	Target          string  `json:"target"`
	DesiredDistance float64 `json:"desired_distance"`
}

// GraphHints carry graph-wide renderer settings.
type GraphHints struct {
	ChargeStrength float64 `json:"charge_strength"`
	NodeRelSize    float64 `json:"node_rel_size"`
}

// GraphView is the star-shaped node/link structure handed to the renderer.
// Nodes[0] is always the focal node.
type GraphView struct {
	Nodes     []GraphNode `json:"nodes"`
	Links     []GraphLink `json:"links"`
	Truncated bool        `json:"truncated"`
	Total     int         `json:"total"`
	Hints     GraphHints  `json:"hints"`
}

// Focal returns the focal node, or false for an empty view.
func (g GraphView) Focal() (GraphNode, bool) {
	if len(g.Nodes) == 0 {
		return GraphNode{}, false
	}
	return g.Nodes[0], true
}

// Node looks up a node by ID.
func (g GraphView) Node(id string) (GraphNode, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return g.Nodes[i], true
		}
	}
	return GraphNode{}, false
}

// Point is a 2D coordinate in graph space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodePosition is a settled position reported by the layout engine.
type NodePosition struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Size is a viewport size in screen pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewportFrame is the camera target computed after layout settles.
type ViewportFrame struct {
	Center Point   `json:"center"`
	Zoom   float64 `json:"zoom"`
}
