package gesture

import (
	"fmt"
	"math"
	"strings"
)

// DefaultMinDistance is the leg length (pixels) a stroke must cover before
// it registers a direction.
const DefaultMinDistance = 50.0

// Direction is a coarse compass heading in screen space.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection converts a direction name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down, Left, Right:
		return d, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Sequence is an ordered run of directions with no two adjacent elements
// equal. Directions never produces a sequence that violates this.
type Sequence []Direction

// Pattern joins the sequence into its lookup key, e.g. "down-right".
func (s Sequence) Pattern() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = string(d)
	}
	return strings.Join(parts, "-")
}

// Strings returns the sequence as plain strings.
func (s Sequence) Strings() []string {
	out := make([]string, len(s))
	for i, d := range s {
		out[i] = string(d)
	}
	return out
}

// DirectionFromAngle maps an angle in degrees (screen space, 0 = +x,
// 90 = +y i.e. downwards) to a direction. Any angle is accepted and
// normalized to [0, 360) first. Bucket lower edges are inclusive:
//
//	[45, 135)  down
//	[135, 225) left
//	[225, 315) up
//	otherwise  right
func DirectionFromAngle(deg float64) Direction {
	a := math.Mod(math.Mod(deg, 360)+360, 360)

	switch {
	case a >= 45 && a < 135:
		return Down
	case a >= 135 && a < 225:
		return Left
	case a >= 225 && a < 315:
		return Up
	default:
		return Right
	}
}

// Directions quantizes a polyline into a direction sequence.
//
// The first point is the reference. Points closer than minDistance to the
// reference are skipped. Once a point is far enough away, its heading from
// the reference is bucketed; if it differs from the last emitted direction it
// is appended and the reference moves to that point, so the next leg is
// measured on its own. A heading equal to the last one leaves the reference
// in place.
//
// Fewer than two points yield an empty sequence.
func Directions(points []Point, minDistance float64) Sequence {
	if len(points) < 2 {
		return Sequence{}
	}

	seq := Sequence{}
	var last Direction
	ref := points[0]

	for _, p := range points[1:] {
		dx := p.X - ref.X
		dy := p.Y - ref.Y
		if math.Hypot(dx, dy) < minDistance {
			continue
		}

		dir := DirectionFromAngle(math.Atan2(dy, dx) * 180 / math.Pi)
		if dir == last {
			continue
		}

		seq = append(seq, dir)
		last = dir
		ref = p
	}

	return seq
}
