// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package chip8

import (
	"bufio"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strings"
)

const (
	COMMENT_MARKER = ";"
	LABEL_MARKER   = "."

	BASE_ADDRESS     = 0x200   // Default load address of the first instruction.
	INSTRUCTION_SIZE = 2       // Bytes per opcode.
	ADDRESS_LIMIT    = 0xfff   // Largest 12-bit address.
	LINE_LIMIT       = 1 << 20 // Longest source line, in bytes.
)

var labelRe = regexp.MustCompile(`^\.([A-Z_][A-Z0-9_]*)$`)

// Statement is a normalized instruction line.
type Statement struct {
	LineNo int    // 1-based source line.
	Text   string // Upper case, single spaced, without comment.
	Raw    string // Line as written.
}

// Label binds a name to the index of the statement that follows it.
type Label struct {
	Index  int // Statement index.
	LineNo int // Line of the definition.
}

// Source is the value handed from one assembler pass to the next.
type Source struct {
	Origin      uint16           // Address of statement 0.
	Statements  []Statement      // Statements in source order.
	Labels      map[string]Label // Label definitions.
	Diagnostics Diagnostics      // Diagnostics found so far.
}

// Address returns the load address of a statement index.
func (src *Source) Address(index int) int {
	return int(src.Origin) + index*INSTRUCTION_SIZE
}

// clone makes a copy that a pass may modify.
func (src *Source) clone() *Source {
	return &Source{
		Origin:      src.Origin,
		Statements:  slices.Clone(src.Statements),
		Labels:      maps.Clone(src.Labels),
		Diagnostics: slices.Clone(src.Diagnostics),
	}
}

// normalize strips any comment, upper-cases and collapses whitespace.
func normalize(text string) string {
	text, _, _ = strings.Cut(text, COMMENT_MARKER)
	return strings.Join(strings.Fields(strings.ToUpper(text)), " ")
}

// parseLabel returns the label name defined by a normalized line.
func parseLabel(line string) (name string, ok bool) {
	match := labelRe.FindStringSubmatch(line)
	if match == nil {
		return
	}
	return match[1], true
}

// origin returns the configured origin, or the default base address.
func (asm *Assembler) origin() uint16 {
	if asm.Origin == 0 {
		return BASE_ADDRESS
	}
	return asm.Origin
}

// warn records a recoverable diagnostic; under Strict it is an error.
func (asm *Assembler) warn(src *Source, lineno int, line string, err error) {
	severity := SEVERITY_WARNING
	if asm.Strict {
		severity = SEVERITY_ERROR
	}
	src.Diagnostics = append(src.Diagnostics, Diagnostic{LineNo: lineno, Severity: severity, Line: line, Err: err})
}

// Parse reads source text, collecting statements and label definitions.
// Malformed and duplicate labels are reported as diagnostics and do not
// stop the parse; only a read error is returned, as an *ErrAssembly whose
// last diagnostic names the line that could not be read.
func (asm *Assembler) Parse(input io.Reader) (src *Source, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(nil, LINE_LIMIT)

	src = &Source{
		Origin: asm.origin(),
		Labels: make(map[string]Label, 16),
	}

	var lineno int
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line := normalize(text)
		if len(line) == 0 {
			continue
		}

		if !strings.HasPrefix(line, LABEL_MARKER) {
			src.Statements = append(src.Statements, Statement{LineNo: lineno, Text: line, Raw: strings.TrimRight(text, " \t")})
			continue
		}

		name, ok := parseLabel(line)
		if !ok {
			asm.warn(src, lineno, line, ErrLabelInvalid)
			continue
		}

		if _, ok := src.Labels[name]; ok {
			asm.warn(src, lineno, line, ErrLabelDuplicate(name))
			continue
		}

		src.Labels[name] = Label{Index: len(src.Statements), LineNo: lineno}
	}

	err = scanner.Err()
	if err != nil {
		diag := Diagnostic{LineNo: lineno + 1, Severity: SEVERITY_ERROR, Err: err}
		err = &ErrAssembly{Diagnostics: append(slices.Clone(src.Diagnostics), diag)}
	}

	return
}
