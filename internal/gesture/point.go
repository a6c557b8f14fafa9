package gesture

import (
	"fmt"
	"math"
)

// Point is one pointer sample in screen coordinates (pixels, y grows down).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// String formats the point as "x,y".
func (p Point) String() string {
	return fmt.Sprintf("%g,%g", p.X, p.Y)
}
