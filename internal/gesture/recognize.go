package gesture

// Recognition is the outcome of running a stroke through the quantizer and
// the matcher.
type Recognition struct {
	Directions Sequence `json:"directions"`
	Pattern    string   `json:"pattern"`
	Action     Action   `json:"action,omitempty"`
	Matched    bool     `json:"matched"`
}

// Recognizer bundles the quantizer threshold with the matcher.
type Recognizer struct {
	// MinDistance is the leg length in pixels. Zero means DefaultMinDistance.
	MinDistance float64
}

// Recognize quantizes the points and matches the resulting pattern.
// Fewer than two points never match.
func (r Recognizer) Recognize(points []Point) Recognition {
	minDistance := r.MinDistance
	if minDistance <= 0 {
		minDistance = DefaultMinDistance
	}

	seq := Directions(points, minDistance)
	rec := Recognition{
		Directions: seq,
		Pattern:    seq.Pattern(),
	}
	if action, ok := Match(seq); ok {
		rec.Action = action
		rec.Matched = true
	}
	return rec
}
