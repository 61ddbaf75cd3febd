package models

import (
	"math"
	"strings"
)

// Position is a print head position in millimetres. E is the cumulative
// filament length.
type Position struct {
	X, Y, Z, E float64
}

// SamePlace reports whether p and q share the same X, Y and Z.
func (p Position) SamePlace(q Position) bool {
	return p.X == q.X && p.Y == q.Y && p.Z == q.Z
}

type Move struct {
	From        Position `json:"from"`
	To          Position `json:"to"`
	IsExtrusion bool     `json:"isExtrusion"`
}

// Midpoint returns the point halfway along the move.
func (m Move) Midpoint() (x, y, z float64) {
	return (m.From.X + m.To.X) / 2, (m.From.Y + m.To.Y) / 2, (m.From.Z + m.To.Z) / 2
}

type Bounds struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// Range returns the extent along each axis. A flat axis reports 1 so callers
// can divide by it.
func (b Bounds) Range() (x, y, z float64) {
	return orOne(b.MaxX - b.MinX), orOne(b.MaxY - b.MinY), orOne(b.MaxZ - b.MinZ)
}

func (b Bounds) Center() (x, y, z float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2, (b.MinZ + b.MaxZ) / 2
}

// MaxRange is the largest of the three axis ranges.
func (b Bounds) MaxRange() float64 {
	x, y, z := b.Range()
	return math.Max(x, math.Max(y, z))
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// Toolpath is the ordered, immutable move list for one G-code text together
// with the statistics gathered while parsing it.
type Toolpath struct {
	Moves      []Move
	Extrusions int
	// Layers holds the distinct Z heights of move origins, ascending.
	Layers []float64
	// Malformed counts axis parameters whose number could not be parsed.
	Malformed int
	Lines     int
}

func (t *Toolpath) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Moves)
}

// Bounds computes the bounding box over all move endpoints. An empty
// toolpath yields the zero box.
func (t *Toolpath) Bounds() Bounds {
	if t.Len() == 0 {
		return Bounds{}
	}
	first := t.Moves[0].From
	b := Bounds{
		MinX: first.X, MaxX: first.X,
		MinY: first.Y, MaxY: first.Y,
		MinZ: first.Z, MaxZ: first.Z,
	}
	for _, m := range t.Moves {
		for _, p := range [2]Position{m.From, m.To} {
			b.MinX = math.Min(b.MinX, p.X)
			b.MaxX = math.Max(b.MaxX, p.X)
			b.MinY = math.Min(b.MinY, p.Y)
			b.MaxY = math.Max(b.MaxY, p.Y)
			b.MinZ = math.Min(b.MinZ, p.Z)
			b.MaxZ = math.Max(b.MaxZ, p.Z)
		}
	}
	return b
}

type ViewMode int

const (
	View3D ViewMode = iota
	View2D
)

func (m ViewMode) String() string {
	if m == View2D {
		return "2D"
	}
	return "3D"
}

// ParseViewMode accepts "2d"/"3d" in any case. Anything else is 3D.
func ParseViewMode(s string) ViewMode {
	if strings.EqualFold(strings.TrimSpace(s), "2d") {
		return View2D
	}
	return View3D
}

type PrintState string

const (
	StatusIdle     PrintState = "idle"
	StatusPrinting PrintState = "printing"
	StatusPaused   PrintState = "paused"
)

// Active reports whether a print is in progress, paused or not.
func (s PrintState) Active() bool {
	return s == StatusPrinting || s == StatusPaused
}

// PrintStatus mirrors the backend's print status record. Progress is a
// percentage in [0, 100].
type PrintStatus struct {
	Status      PrintState `json:"status"`
	Progress    float64    `json:"progress"`
	Filename    string     `json:"filename"`
	CurrentLine int        `json:"current_line"`
	TotalLines  int        `json:"total_lines"`
}

// Fraction returns Progress normalised to [0, 1].
func (s PrintStatus) Fraction() float64 {
	f := s.Progress / 100
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
