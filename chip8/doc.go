// Package chip8 implements a two-pass assembler for the CHIP-8 virtual machine.
//
// Source text is one statement per line. A ';' starts a comment, a line
// beginning with '.' defines a label bound to the next statement, and every
// other line is an instruction: a mnemonic followed by whitespace separated
// operands. Registers are written V0-VF and numeric literals are hexadecimal
// with a 0x prefix of exactly the operand width (0x123, 0x12, 0x1).
//
// Assembly runs as four passes, each consuming the complete output of the
// previous one: Parse, Resolve, Generate and Encode. Assembler.Assemble runs
// all of them in order.
package chip8
