package graphview

import "github.com/ajitpratap0/castgraph/internal/models"

// Node colours used by the renderer.
const (
	ColorSelected = "#fbbf24"
	ColorSubject  = "#ff6b6b"
	ColorRelated  = "#4ecdc4"
	ColorStroke   = "#f59e0b"
	ColorLink     = "#cbd5e1"
)

// NodeStyle is what the render callback needs to draw one node.
type NodeStyle struct {
	Fill   string  `json:"fill"`
	Stroke string  `json:"stroke,omitempty"`
	Radius float64 `json:"radius"`
	Label  string  `json:"label"`
}

// Paint is the per-node render hook. selectedID may be empty.
func Paint(node models.GraphNode, selectedID string) NodeStyle {
	style := NodeStyle{Radius: 5, Label: node.Label}
	switch {
	case selectedID != "" && node.ID == selectedID:
		style.Fill = ColorSelected
		style.Stroke = ColorStroke
		style.Radius = 8
	case node.Role == models.RoleSubject:
		style.Fill = ColorSubject
	default:
		style.Fill = ColorRelated
	}
	return style
}
