package chip8

import (
	"errors"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/chip8asm/internal"
	"github.com/ezrec/chip8asm/translate"
)

var f = translate.From

var (
	// Parser errors
	ErrLabelInvalid = errors.New(f("invalid label"))

	// Generator errors
	ErrInstructionInvalid = errors.New(f("instruction invalid"))

	// Encoder errors
	ErrOpcodeInvalid = errors.New(f("opcode invalid"))
)

type ErrLabelDuplicate string

func (el ErrLabelDuplicate) Error() string {
	return f("label %v already defined", string(el))
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrLabelReference is a label used by anything other than JMP or CALL.
type ErrLabelReference string

func (el ErrLabelReference) Error() string {
	return f("label %v not allowed here", string(el))
}

// ErrAddressRange is a resolved address that does not fit in 12 bits.
type ErrAddressRange int

func (ea ErrAddressRange) Error() string {
	return f("address 0x%X out of range", int(ea))
}

// Diagnostic is a problem found on a single source line.
type Diagnostic struct {
	LineNo   int      // 1-based source line.
	Severity Severity // Warnings do not stop assembly.
	Line     string   // Normalized text of the line.
	Err      error
}

func (diag Diagnostic) Error() string {
	return f("line %v '%v' %v", strconv.Itoa(diag.LineNo), diag.Line, diag.Err)
}

func (diag Diagnostic) Unwrap() error {
	return diag.Err
}

// Message is the human readable description, without the line.
func (diag Diagnostic) Message() string {
	return diag.Err.Error()
}

// Diagnostics is a list of diagnostics in the order they were found.
type Diagnostics []Diagnostic

// Fatal returns true if any diagnostic is an error.
func (diags Diagnostics) Fatal() bool {
	for _, diag := range diags {
		if diag.Severity == SEVERITY_ERROR {
			return true
		}
	}
	return false
}

// Of yields the diagnostics of one severity.
func (diags Diagnostics) Of(severity Severity) iter.Seq[Diagnostic] {
	return internal.Filter(slices.Values(diags), func(diag Diagnostic) bool {
		return diag.Severity == severity
	})
}

// ErrAssembly aborts a run. It carries every diagnostic collected up to
// the failing pass, warnings included.
type ErrAssembly struct {
	Diagnostics Diagnostics
}

func (err *ErrAssembly) Error() string {
	var fatal []string
	for diag := range err.Diagnostics.Of(SEVERITY_ERROR) {
		fatal = append(fatal, diag.Error())
	}

	switch len(fatal) {
	case 0:
		return f("assembly failed")
	case 1:
		return fatal[0]
	default:
		return f("%d errors: %v", len(fatal), strings.Join(fatal, "; "))
	}
}

func (err *ErrAssembly) Unwrap() (errs []error) {
	for _, diag := range err.Diagnostics {
		errs = append(errs, diag)
	}
	return
}

// ErrOpcode is a generated opcode that is not four hex digits.
type ErrOpcode string

func (eo ErrOpcode) Error() string {
	return f("bad opcode '%v'", string(eo))
}

func (eo ErrOpcode) Is(err error) bool {
	return err == ErrOpcodeInvalid
}
