// Package viewport computes the camera target once the external layout
// engine reports that node positions have settled.
package viewport

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// Renderer receives animated camera instructions. Implementations animate;
// the controller only computes targets.
type Renderer interface {
	CenterAt(x, y float64, duration time.Duration)
	Zoom(k float64, duration time.Duration)
}

// Config holds the presentation constants for auto-fit.
type Config struct {
	// HorizontalBias shifts the centre by this fraction of the bounding width
	// to compensate for side panels covering part of the canvas.
	HorizontalBias float64 `mapstructure:"horizontal_bias"`
	// Margin scales the fitted zoom down so edge nodes are not clipped.
	Margin float64 `mapstructure:"margin"`
	// NeutralZoom is used when the bounding box is degenerate on both axes.
	NeutralZoom float64 `mapstructure:"neutral_zoom"`
	MinZoom     float64 `mapstructure:"min_zoom"`
	MaxZoom     float64 `mapstructure:"max_zoom"`
	// Animation is the duration passed with both camera instructions.
	Animation time.Duration `mapstructure:"animation"`
}

// DefaultConfig returns the auto-fit defaults.
func DefaultConfig() Config {
	return Config{
		HorizontalBias: 0.1,
		Margin:         0.9,
		NeutralZoom:    1,
		MinZoom:        0.05,
		MaxZoom:        8,
		Animation:      1000 * time.Millisecond,
	}
}

// degenerate is the extent below which an axis is treated as zero width.
const degenerate = 1e-9

// Fit computes the camera frame for positions inside a viewport of size.
// It returns false when there are no positions.
func Fit(positions []models.NodePosition, size models.Size, cfg Config) (models.ViewportFrame, bool) {
	if len(positions) == 0 {
		return models.ViewportFrame{}, false
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range positions {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	width := maxX - minX
	height := maxY - minY

	center := models.Point{
		X: (minX+maxX)/2 + cfg.HorizontalBias*width,
		Y: (minY + maxY) / 2,
	}

	var zoom float64
	switch {
	case width <= degenerate && height <= degenerate:
		zoom = cfg.NeutralZoom
	case width <= degenerate:
		zoom = size.Height / height * cfg.Margin
	case height <= degenerate:
		zoom = size.Width / width * cfg.Margin
	default:
		zoom = math.Min(size.Width/width, size.Height/height) * cfg.Margin
	}
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) || zoom <= 0 {
		zoom = cfg.NeutralZoom
	}
	zoom = clamp(zoom, cfg.MinZoom, cfg.MaxZoom)

	return models.ViewportFrame{Center: center, Zoom: zoom}, true
}

func clamp(v, lo, hi float64) float64 {
	if lo > 0 && v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}

// Controller applies Fit exactly once per armed graph.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	renderer Renderer
	logger   *slog.Logger
	armed    string
	last     *models.ViewportFrame
}

// NewController creates a controller. renderer may be nil, in which case
// frames are computed but not dispatched.
func NewController(cfg Config, renderer Renderer, logger *slog.Logger) *Controller {
	return &Controller{cfg: cfg, renderer: renderer, logger: logger}
}

// Arm marks graphID as the graph awaiting its settle event. Arming a new
// graph discards any frame from the previous one.
func (c *Controller) Arm(graphID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = graphID
	c.last = nil
}

// Disarm drops any pending fit, e.g. when the graph is cleared.
func (c *Controller) Disarm() {
	c.Arm("")
}

// OnLayoutSettled is the settle hook. It fits the armed graph and dispatches
// the recenter and zoom instructions. Settles for a graph that is not armed,
// or that was already fitted, return false and do nothing.
func (c *Controller) OnLayoutSettled(graphID string, positions []models.NodePosition, size models.Size) (models.ViewportFrame, bool) {
	c.mu.Lock()
	if graphID == "" || graphID != c.armed {
		c.mu.Unlock()
		return models.ViewportFrame{}, false
	}
	frame, ok := Fit(positions, size, c.cfg)
	if !ok {
		c.mu.Unlock()
		return models.ViewportFrame{}, false
	}
	c.armed = ""
	c.last = &frame
	renderer := c.renderer
	c.mu.Unlock()

	c.logger.Debug("viewport fitted", "graph", graphID, "x", frame.Center.X, "y", frame.Center.Y, "zoom", frame.Zoom)
	if renderer != nil {
		renderer.CenterAt(frame.Center.X, frame.Center.Y, c.cfg.Animation)
		renderer.Zoom(frame.Zoom, c.cfg.Animation)
	}
	return frame, true
}

// Last returns the most recent frame for the current graph.
func (c *Controller) Last() (models.ViewportFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return models.ViewportFrame{}, false
	}
	return *c.last, true
}
