package raydemo

// Rect is an element's bounding rectangle in viewport coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Viewport is the visible area of the page, anchored at the origin.
type Viewport struct {
	Width, Height float64
}

// IsVisible reports whether r overlaps the viewport by a positive amount on
// both axes. Partial overlap counts; touching an edge does not.
func IsVisible(r Rect, vp Viewport) bool {
	ox := min(r.X+r.Width, vp.Width) - max(r.X, 0)
	oy := min(r.Y+r.Height, vp.Height) - max(r.Y, 0)
	return ox > 0 && oy > 0
}

// PageEvent is a host event that may change element visibility.
type PageEvent int

// Page events that trigger a visibility recompute.
const (
	EventDOMContentLoaded PageEvent = iota
	EventLoad
	EventScroll
	EventResize
)

// String returns the DOM name of the event.
func (e PageEvent) String() string {
	switch e {
	case EventDOMContentLoaded:
		return "DOMContentLoaded"
	case EventLoad:
		return "load"
	case EventScroll:
		return "scroll"
	case EventResize:
		return "resize"
	default:
		return "unknown"
	}
}

type gateEntry struct {
	bounds func() Rect
	set    func(bool)
}

// Gate recomputes visibility of tracked elements on every page event.
// There is no debouncing; IsVisible is cheap and idempotent.
type Gate struct {
	entries []gateEntry
}

// Track registers an element. bounds is queried on every event and set
// receives the result.
func (g *Gate) Track(bounds func() Rect, set func(bool)) {
	g.entries = append(g.entries, gateEntry{bounds: bounds, set: set})
}

// Handle recomputes visibility for all tracked elements.
func (g *Gate) Handle(ev PageEvent, vp Viewport) {
	for _, e := range g.entries {
		visible := IsVisible(e.bounds(), vp)
		e.set(visible)
	}
	Logger().Debug("visibility recomputed", "event", ev.String(), "tracked", len(g.entries))
}
