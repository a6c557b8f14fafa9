package settings

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// schemaSource is the closed definition every settings file is unified
// with. Unknown fields are rejected; omitted fields take the marked default.
const schemaSource = `
#Settings: {
	gesturesEnabled: *true | bool
	debugLogging:    *false | bool
}
`

// ParseError reports an invalid settings document with its source position.
type ParseError struct {
	Message string
	Pos     token.Pos
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Parse validates a CUE settings document against the schema and decodes
// it. filename is only used in error positions.
func Parse(data []byte, filename string) (Settings, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("settings_schema.cue"))
	if err := schema.Err(); err != nil {
		return Defaults(), fmt.Errorf("compile settings schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Settings"))

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Defaults(), formatCUEError(err)
	}

	merged := def.Unify(v)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return Defaults(), formatCUEError(err)
	}

	var s Settings
	if err := merged.Decode(&s); err != nil {
		return Defaults(), fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	pe := &ParseError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		pe.Pos = positions[0]
	}
	return pe
}
