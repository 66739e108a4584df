package chip8

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/ezrec/chip8asm/internal"
)

// controlTransfer lists the mnemonics that may take a label operand.
var controlTransfer = []string{"JMP", "CALL"}

// resolveStatement rewrites a label reference into an address literal.
func (src *Source) resolveStatement(stmt *Statement) (err error) {
	fields := strings.Fields(stmt.Text)

	at := slices.IndexFunc(fields, func(word string) bool {
		return strings.HasPrefix(word, LABEL_MARKER)
	})
	if at < 0 {
		return
	}

	if len(fields) != 2 || at != 1 || !slices.Contains(controlTransfer, fields[0]) {
		err = ErrLabelReference(strings.TrimPrefix(fields[at], LABEL_MARKER))
		return
	}

	name, ok := parseLabel(fields[1])
	if !ok {
		err = ErrLabelInvalid
		return
	}

	label, ok := src.Labels[name]
	if !ok {
		err = ErrLabelMissing(name)
		return
	}

	addr := src.Address(label.Index)
	if addr > ADDRESS_LIMIT {
		err = ErrAddressRange(addr)
		return
	}

	stmt.Text = fmt.Sprintf("%v %v%03X", fields[0], NUMBER_MARKER, addr)
	return
}

// Resolve replaces every JMP and CALL label operand with the label's
// absolute address. Any other use of a label, an undefined label, or an
// address beyond 12 bits is fatal. All statements are checked before
// the pass fails.
func (asm *Assembler) Resolve(src *Source) (res *Source, err error) {
	res = src.clone()

	var found Diagnostics
	for n := range res.Statements {
		stmt := &res.Statements[n]
		text := stmt.Text

		rerr := res.resolveStatement(stmt)
		if rerr != nil {
			found = append(found, Diagnostic{LineNo: stmt.LineNo, Severity: SEVERITY_ERROR, Line: text, Err: rerr})
			continue
		}

		if asm.Verbose && text != stmt.Text {
			log.Printf("%v: %v => %v\n", stmt.LineNo, text, stmt.Text)
		}
	}

	res.Diagnostics = slices.Collect(internal.Concat(slices.Values(src.Diagnostics), slices.Values(found)))

	if res.Diagnostics.Fatal() {
		err = &ErrAssembly{Diagnostics: res.Diagnostics}
		res = nil
	}

	return
}
