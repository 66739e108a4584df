package chip8

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Opcode is one generated instruction.
type Opcode struct {
	LineNo      int          // 1-based source line.
	Address     int          // Load address.
	Source      string       // Source line as written.
	Text        string       // Normalized, label resolved text.
	Hex         string       // Four upper case hex digits.
	Instruction *Instruction // Matching table entry.
}

// Program is the result of a successful assembly.
type Program struct {
	Origin      uint16
	Opcodes     []Opcode
	Labels      map[string]Label
	Diagnostics Diagnostics // Warnings only.
}

// Size returns the binary size in bytes.
func (prog *Program) Size() int {
	return len(prog.Opcodes) * INSTRUCTION_SIZE
}

// Hex returns the opcode strings in program order.
func (prog *Program) Hex() (opcodes []string) {
	for _, op := range prog.Opcodes {
		opcodes = append(opcodes, op.Hex)
	}
	return
}

// Binary encodes the program for loading at its origin.
func (prog *Program) Binary() (data []byte, err error) {
	return Encode(prog.Hex())
}

// Codes yields each opcode with its address.
func (prog *Program) Codes() iter.Seq2[int, string] {
	return func(yield func(addr int, hex string) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Address, op.Hex) {
				return
			}
		}
	}
}

// Debug returns the opcode that occupies addr, or nil.
func (prog *Program) Debug(addr int) (op *Opcode) {
	if addr < int(prog.Origin) {
		return
	}

	n := (addr - int(prog.Origin)) / INSTRUCTION_SIZE
	if n < len(prog.Opcodes) {
		op = &prog.Opcodes[n]
	}

	return
}

// Symbol is a label with its resolved address.
type Symbol struct {
	Name    string
	Address int
	LineNo  int
}

// Symbols returns the labels ordered by address, then name.
func (prog *Program) Symbols() (syms []Symbol) {
	for _, name := range slices.Sorted(maps.Keys(prog.Labels)) {
		label := prog.Labels[name]
		syms = append(syms, Symbol{
			Name:    name,
			Address: int(prog.Origin) + label.Index*INSTRUCTION_SIZE,
			LineNo:  label.LineNo,
		})
	}

	slices.SortStableFunc(syms, func(a, b Symbol) int {
		return cmp.Compare(a.Address, b.Address)
	})

	return
}
