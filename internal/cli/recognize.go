package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rightstroke/internal/gesture"
)

// RecognizeOptions holds flags for the recognize command.
type RecognizeOptions struct {
	*RootOptions
	Points      string
	MinDistance float64
}

// RecognizeResult is the recognition of one stroke.
type RecognizeResult struct {
	Points     int      `json:"points"`
	Directions []string `json:"directions"`
	Pattern    string   `json:"pattern"`
	Action     string   `json:"action,omitempty"`
	Label      string   `json:"label,omitempty"`
	Matched    bool     `json:"matched"`
}

// NewRecognizeCommand creates the recognize command.
func NewRecognizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecognizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recognize",
		Short: "Recognize a stroke from its points",
		Long: `Quantize a stroke into directions and match it against the gesture
rules, without any timing or context menu arbitration.

Points are pixel coordinates, "x,y", separated by spaces.

Example:
  rightstroke recognize --points "100,100 100,160 160,160"
  rightstroke recognize --points "0,0 0,-80 0,0" --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecognize(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Points, "points", "", "stroke points as \"x,y x,y ...\" (required)")
	_ = cmd.MarkFlagRequired("points")
	cmd.Flags().Float64Var(&opts.MinDistance, "min-distance", gesture.DefaultMinDistance, "leg length in pixels")

	return cmd
}

func runRecognize(opts *RecognizeOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	points, err := parsePoints(opts.Points)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidPoints, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --points", err)
	}
	if opts.MinDistance <= 0 {
		msg := fmt.Sprintf("--min-distance must be positive, got %g", opts.MinDistance)
		_ = formatter.Error(ErrCodeInvalidPoints, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	formatter.VerboseLog("Recognizing %d point(s), min distance %gpx", len(points), opts.MinDistance)

	rec := gesture.Recognizer{MinDistance: opts.MinDistance}.Recognize(points)
	result := RecognizeResult{
		Points:     len(points),
		Directions: rec.Directions.Strings(),
		Pattern:    rec.Pattern,
		Matched:    rec.Matched,
	}
	if rec.Matched {
		result.Action = string(rec.Action)
		result.Label = rec.Action.Label()
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputRecognizeText(cmd, result)
}

// parsePoints parses "x,y x,y ..." into points.
func parsePoints(s string) ([]gesture.Point, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no points given")
	}

	points := make([]gesture.Point, 0, len(fields))
	for i, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("point %d: expected x,y, got %q", i+1, f)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: invalid x %q", i+1, xs)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: invalid y %q", i+1, ys)
		}
		points = append(points, gesture.Point{X: x, Y: y})
	}
	return points, nil
}

func outputRecognizeText(cmd *cobra.Command, result RecognizeResult) error {
	w := cmd.OutOrStdout()

	directions := strings.Join(result.Directions, " ")
	if directions == "" {
		directions = "(none)"
	}
	fmt.Fprintf(w, "Points:     %d\n", result.Points)
	fmt.Fprintf(w, "Directions: %s\n", directions)
	if result.Pattern != "" {
		fmt.Fprintf(w, "Pattern:    %s\n", result.Pattern)
	}
	if result.Matched {
		fmt.Fprintf(w, "Action:     %s (%s)\n", result.Action, result.Label)
	} else {
		fmt.Fprintln(w, "Action:     none")
	}
	return nil
}
