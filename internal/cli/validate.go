package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rightstroke/internal/harness"
	"github.com/roach88/rightstroke/internal/settings"
)

// File kinds checked by validate.
const (
	KindScenario = "scenario"
	KindSettings = "settings"
)

// FileValidation is the result for one file.
type FileValidation struct {
	Path    string             `json:"path"`
	Kind    string             `json:"kind"`
	Valid   bool               `json:"valid"`
	Code    string             `json:"code,omitempty"`
	Message string             `json:"message,omitempty"`
	Line    int                `json:"line,omitempty"`
	Steps   int                `json:"steps,omitempty"`
	Values  *settings.Settings `json:"settings,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file-or-dir>...",
		Short: "Validate scenario and settings files",
		Long: `Validate gesture scenarios (*.yaml, *.yml) and settings files (*.cue)
without running them.

Scenarios are decoded strictly, so misspelled keys are errors. Settings
are unified with the settings schema; unknown fields and non-boolean
values are rejected. Directories contribute their scenario and settings
files, non-recursively.

Exit codes:
  0 - All files valid
  1 - One or more files invalid
  2 - Command error (path not found, nothing to validate)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	files, err := collectValidateFiles(paths)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot validate", err)
	}
	if len(files) == 0 {
		msg := "no scenario or settings files found"
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	formatter.VerboseLog("Validating %d file(s)", len(files))

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, path := range files {
		formatter.VerboseLog("Checking %s", path)
		fv := validateFile(path)
		result.Files = append(result.Files, fv)
		if !fv.Valid {
			result.Valid = false
		}
	}

	if opts.Format == "json" {
		return outputValidateJSON(formatter, result)
	}
	return outputValidateText(formatter, result)
}

// collectValidateFiles expands paths into the files validate understands.
func collectValidateFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path not found: %s", p)
			}
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		scenarios, err := harness.ScenarioPaths([]string{p})
		if err != nil {
			return nil, err
		}
		files = append(files, scenarios...)

		cueFiles, err := filepath.Glob(filepath.Join(p, "*.cue"))
		if err != nil {
			return nil, err
		}
		files = append(files, cueFiles...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// fileKind classifies a file by extension.
func fileKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return KindSettings
	default:
		return KindScenario
	}
}

// validateFile checks one file without running it.
func validateFile(path string) FileValidation {
	fv := FileValidation{Path: path, Kind: fileKind(path)}

	switch fv.Kind {
	case KindSettings:
		data, err := os.ReadFile(path)
		if err != nil {
			fv.Code = ErrCodeNotFound
			fv.Message = err.Error()
			return fv
		}
		s, err := settings.Parse(data, path)
		if err != nil {
			fv.Code = ErrCodeInvalidSettings
			fv.Message = err.Error()
			var perr *settings.ParseError
			if errors.As(err, &perr) && perr.Pos.IsValid() {
				fv.Message = perr.Message
				fv.Line = perr.Pos.Line()
			}
			return fv
		}
		fv.Valid = true
		fv.Values = &s

	default:
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			fv.Code = ErrCodeInvalidScenario
			fv.Message = err.Error()
			return fv
		}
		fv.Valid = true
		fv.Steps = len(scenario.Steps)
	}
	return fv
}

// outputValidateJSON outputs the validation result as JSON.
func outputValidateJSON(formatter *OutputFormatter, result ValidationResult) error {
	if result.Valid {
		return writeResponse(formatter.Writer, CLIResponse{Status: "ok", Data: result})
	}

	invalid := invalidFiles(result)
	response := CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    invalid[0].Code,
			Message: invalid[0].Message,
		},
	}
	if err := writeResponse(formatter.Writer, response); err != nil {
		return err
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(invalid)))
}

// outputValidateText outputs the validation result as text.
func outputValidateText(formatter *OutputFormatter, result ValidationResult) error {
	w := formatter.Writer

	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(w, "✓ %s (%s)\n", fv.Path, fv.Kind)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%s)\n", fv.Path, fv.Kind)
		if fv.Line > 0 {
			fmt.Fprintf(w, "  line %d\n", fv.Line)
		}
		fmt.Fprintf(w, "  %s: %s\n", fv.Code, fv.Message)
	}
	fmt.Fprintln(w)

	if result.Valid {
		fmt.Fprintln(w, "✓ All files valid")
		return nil
	}

	invalid := invalidFiles(result)
	fmt.Fprintln(w, "✗ Validation failed")
	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(invalid)))
}

func invalidFiles(result ValidationResult) []FileValidation {
	var out []FileValidation
	for _, fv := range result.Files {
		if !fv.Valid {
			out = append(out, fv)
		}
	}
	return out
}
