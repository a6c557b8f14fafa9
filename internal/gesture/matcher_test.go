package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPattern_Rules(t *testing.T) {
	testCases := []struct {
		name    string
		pattern string
		want    Action
		ok      bool
	}{
		{"back single left", "left", ActionBack, true},
		{"reload up-down", "up-down", ActionReload, true},
		{"reload down-up", "down-up", ActionReload, true},
		{"close exact", "down-right", ActionClose, true},
		{"close with trailing legs", "down-right-up", ActionClose, true},
		{"next tab exact", "up-right", ActionNextTab, true},
		{"next tab with trailing legs", "up-right-down-left", ActionNextTab, true},
		{"prev tab exact", "up-left", ActionPrevTab, true},
		{"prev tab with trailing leg", "up-left-down", ActionPrevTab, true},
		{"single right", "right", "", false},
		{"single up", "up", "", false},
		{"single down", "down", "", false},
		{"down-left has no rule", "down-left", "", false},
		{"left is exact only", "left-up", "", false},
		{"reload is exact only", "up-down-up", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := MatchPattern(tc.pattern)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatch_EmptySequence(t *testing.T) {
	_, ok := Match(Sequence{})
	assert.False(t, ok)

	_, ok = Match(nil)
	assert.False(t, ok)
}

func TestRecognize_FewerThanTwoPointsNeverMatch(t *testing.T) {
	rec := Recognizer{}

	for _, points := range [][]Point{nil, {}, {{X: 5, Y: 5}}} {
		r := rec.Recognize(points)
		assert.False(t, r.Matched)
		assert.Empty(t, r.Directions)
		assert.Equal(t, "", r.Pattern)
	}
}

func TestRecognize_Strokes(t *testing.T) {
	rec := Recognizer{MinDistance: DefaultMinDistance}

	testCases := []struct {
		name       string
		points     []Point
		directions Sequence
		action     Action
	}{
		{
			name:       "down then right closes",
			points:     []Point{{0, 0}, {0, 100}, {100, 100}},
			directions: Sequence{Down, Right},
			action:     ActionClose,
		},
		{
			name:       "up then down reloads",
			points:     []Point{{0, 0}, {0, -100}, {0, 0}},
			directions: Sequence{Up, Down},
			action:     ActionReload,
		},
		{
			name:       "left goes back",
			points:     []Point{{200, 0}, {100, 0}},
			directions: Sequence{Left},
			action:     ActionBack,
		},
		{
			name:       "up then left is previous tab",
			points:     []Point{{0, 0}, {0, -80}, {-80, -80}},
			directions: Sequence{Up, Left},
			action:     ActionPrevTab,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := rec.Recognize(tc.points)
			assert.Equal(t, tc.directions, r.Directions)
			assert.Equal(t, tc.directions.Pattern(), r.Pattern)
			assert.True(t, r.Matched)
			assert.Equal(t, tc.action, r.Action)
		})
	}
}

func TestAction_ParseAndLabel(t *testing.T) {
	for _, a := range Actions {
		parsed, err := ParseAction(string(a))
		assert.NoError(t, err)
		assert.Equal(t, a, parsed)
		assert.NotEmpty(t, a.Label())
	}

	_, err := ParseAction("forward")
	assert.Error(t, err)
	assert.False(t, Action("forward").Valid())
}
