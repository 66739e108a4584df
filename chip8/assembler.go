// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package chip8

import (
	"io"
)

// Assembler is a two pass assembler for CHIP-8 source.
type Assembler struct {
	Verbose bool   // If set, verbosely logs the assembler actions.
	Strict  bool   // If set, label warnings are fatal.
	Origin  uint16 // Load address of the first opcode, BASE_ADDRESS if zero.
}

// Assemble runs every pass over the input. On a fatal diagnostic the
// error is an *ErrAssembly holding all diagnostics and prog is nil.
func (asm *Assembler) Assemble(input io.Reader) (prog *Program, err error) {
	src, err := asm.Parse(input)
	if err != nil {
		return
	}

	if src.Diagnostics.Fatal() {
		err = &ErrAssembly{Diagnostics: src.Diagnostics}
		return
	}

	src, err = asm.Resolve(src)
	if err != nil {
		return
	}

	prog, err = asm.Generate(src)
	return
}
