package chip8

import (
	"log"
	"maps"
	"slices"
)

// Generate produces one opcode per resolved statement. A statement that
// matches no table entry is fatal; every statement is checked before the
// pass fails, and no statement is ever dropped.
func (asm *Assembler) Generate(src *Source) (prog *Program, err error) {
	prog = &Program{
		Origin: src.Origin,
		Labels: maps.Clone(src.Labels),
	}

	diags := slices.Clone(src.Diagnostics)
	for n, stmt := range src.Statements {
		ins, digits, ok := Lookup(stmt.Text)
		if !ok {
			diags = append(diags, Diagnostic{LineNo: stmt.LineNo, Severity: SEVERITY_ERROR, Line: stmt.Text, Err: ErrInstructionInvalid})
			continue
		}

		hex, gerr := ins.Encode(digits)
		if gerr != nil {
			diags = append(diags, Diagnostic{LineNo: stmt.LineNo, Severity: SEVERITY_ERROR, Line: stmt.Text, Err: gerr})
			continue
		}

		op := Opcode{
			LineNo:      stmt.LineNo,
			Address:     src.Address(n),
			Source:      stmt.Raw,
			Text:        stmt.Text,
			Hex:         hex,
			Instruction: ins,
		}
		prog.Opcodes = append(prog.Opcodes, op)

		if asm.Verbose {
			log.Printf("%v: 0x%03X %v %v\n", op.LineNo, op.Address, op.Hex, op.Text)
		}
	}

	prog.Diagnostics = diags
	if diags.Fatal() {
		err = &ErrAssembly{Diagnostics: diags}
		prog = nil
	}

	return
}
