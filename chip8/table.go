package chip8

import (
	"errors"
	"strings"
)

// OperandKind is the syntax class of an instruction operand.
type OperandKind int

//go:generate go tool stringer -linecomment -type=OperandKind
const (
	OPERAND_REGISTER = OperandKind(0) // register
	OPERAND_ADDRESS  = OperandKind(1) // address
	OPERAND_BYTE     = OperandKind(2) // byte
	OPERAND_NIBBLE   = OperandKind(3) // nibble
	OPERAND_KEYWORD  = OperandKind(4) // keyword
)

const (
	REGISTER_MARKER = "V"  // Prefix of a register reference.
	NUMBER_MARKER   = "0X" // Prefix of a hexadecimal literal, after upper-casing.
)

// Digits returns the number of opcode hex digits the operand fills.
func (kind OperandKind) Digits() int {
	switch kind {
	case OPERAND_REGISTER, OPERAND_NIBBLE:
		return 1
	case OPERAND_BYTE:
		return 2
	case OPERAND_ADDRESS:
		return 3
	default:
		return 0
	}
}

// Operand is one operand pattern of an instruction.
type Operand struct {
	Kind    OperandKind
	Keyword string // Literal token, for OPERAND_KEYWORD only.
}

var (
	REG    = Operand{Kind: OPERAND_REGISTER}
	ADDR   = Operand{Kind: OPERAND_ADDRESS}
	BYTE   = Operand{Kind: OPERAND_BYTE}
	NIBBLE = Operand{Kind: OPERAND_NIBBLE}
)

// Keyword is an operand matched verbatim, such as DT or [I].
func Keyword(word string) Operand {
	return Operand{Kind: OPERAND_KEYWORD, Keyword: word}
}

func (op Operand) String() string {
	switch op.Kind {
	case OPERAND_REGISTER:
		return "Vx"
	case OPERAND_ADDRESS:
		return "0xnnn"
	case OPERAND_BYTE:
		return "0xkk"
	case OPERAND_NIBBLE:
		return "0xn"
	default:
		return op.Keyword
	}
}

func isHex(digits string) bool {
	for _, c := range digits {
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// match checks a single normalized token, returning the digits it captures.
func (op Operand) match(token string) (digits string, ok bool) {
	var prefix string
	switch op.Kind {
	case OPERAND_KEYWORD:
		return "", token == op.Keyword
	case OPERAND_REGISTER:
		prefix = REGISTER_MARKER
	default:
		prefix = NUMBER_MARKER
	}

	digits, ok = strings.CutPrefix(token, prefix)
	if !ok || len(digits) != op.Kind.Digits() || !isHex(digits) {
		return "", false
	}

	return digits, true
}

// Instruction is an entry of the instruction table.
type Instruction struct {
	Opcode   string    // Opcode template, lower case letters are operand digits.
	Mnemonic string    // Upper case mnemonic.
	Operands []Operand // Operand patterns, in template order.
}

func (ins *Instruction) String() string {
	words := []string{ins.Mnemonic}
	for _, op := range ins.Operands {
		words = append(words, op.String())
	}
	return strings.Join(words, " ")
}

// Match matches whitespace split, normalized fields against the
// instruction, returning the captured operand digits in order.
func (ins *Instruction) Match(fields []string) (digits []string, ok bool) {
	if len(fields) != 1+len(ins.Operands) || fields[0] != ins.Mnemonic {
		return nil, false
	}

	for n, op := range ins.Operands {
		digit, ok := op.match(fields[1+n])
		if !ok {
			return nil, false
		}
		if op.Kind != OPERAND_KEYWORD {
			digits = append(digits, digit)
		}
	}

	return digits, true
}

// Encode substitutes operand digits into the opcode template.
func (ins *Instruction) Encode(digits []string) (opcode string, err error) {
	fill := strings.Join(digits, "")

	var sb strings.Builder
	for _, c := range ins.Opcode {
		if c >= 'a' && c <= 'z' {
			if len(fill) == 0 {
				err = ErrOpcodeInvalid
				return
			}
			sb.WriteByte(fill[0])
			fill = fill[1:]
			continue
		}
		sb.WriteRune(c)
	}

	if len(fill) != 0 {
		err = ErrOpcodeInvalid
		return
	}

	opcode = sb.String()
	return
}

// Table is the CHIP-8 instruction set. Entries are tried in order and the
// first structural match wins.
var Table = []Instruction{
	// SYS is ignored by modern interpreters but still assembles.
	{"0nnn", "SYS", []Operand{ADDR}},
	{"00E0", "CLS", nil},
	{"00EE", "RET", nil},
	// JMP addr precedes JMP V0 addr; they differ in operand count.
	{"1nnn", "JMP", []Operand{ADDR}},
	{"2nnn", "CALL", []Operand{ADDR}},
	// Immediate forms precede register forms of SEQ, SNE, LD and ADD.
	{"3xkk", "SEQ", []Operand{REG, BYTE}},
	{"4xkk", "SNE", []Operand{REG, BYTE}},
	{"5xy0", "SEQ", []Operand{REG, REG}},
	{"6xkk", "LD", []Operand{REG, BYTE}},
	{"7xkk", "ADD", []Operand{REG, BYTE}},
	{"8xy0", "LD", []Operand{REG, REG}},
	{"8xy1", "AND", []Operand{REG, REG}},
	{"8xy2", "OR", []Operand{REG, REG}},
	{"8xy3", "XOR", []Operand{REG, REG}},
	{"8xy4", "ADD", []Operand{REG, REG}},
	{"8xy5", "SUB", []Operand{REG, REG}},
	{"8xy6", "SHR", []Operand{REG, REG}},
	{"8xy7", "SUBN", []Operand{REG, REG}},
	{"8xyE", "SHL", []Operand{REG, REG}},
	{"9xy0", "SNE", []Operand{REG, REG}},
	{"Annn", "LD", []Operand{Keyword("I"), ADDR}},
	// V0 is a keyword here, not a register operand.
	{"Bnnn", "JMP", []Operand{Keyword("V0"), ADDR}},
	{"Cxkk", "RND", []Operand{REG, BYTE}},
	{"Dxyn", "DRAW", []Operand{REG, REG, NIBBLE}},
	{"Ex9E", "SKP", []Operand{REG}},
	{"ExA1", "SKNP", []Operand{REG}},
	// Timer, key, font and memory forms of LD. Keywords never look like
	// registers, so none of these shadow LD Vx Vy.
	{"Fx07", "LD", []Operand{REG, Keyword("DT")}},
	{"Fx0A", "LD", []Operand{Keyword("K"), REG}},
	{"Fx15", "LD", []Operand{Keyword("DT"), REG}},
	{"Fx18", "LD", []Operand{Keyword("ST"), REG}},
	{"Fx1E", "ADD", []Operand{Keyword("I"), REG}},
	{"Fx29", "LD", []Operand{Keyword("F"), REG}},
	{"Fx33", "LD", []Operand{Keyword("B"), REG}},
	{"Fx55", "LD", []Operand{Keyword("[I]"), REG}},
	{"Fx65", "LD", []Operand{REG, Keyword("[I]")}},
}

// Lookup finds the first table entry matching a line of instruction text.
func Lookup(text string) (ins *Instruction, digits []string, ok bool) {
	fields := strings.Fields(strings.ToUpper(text))
	if len(fields) == 0 {
		return nil, nil, false
	}

	for n := range Table {
		digits, ok = Table[n].Match(fields)
		if ok {
			return &Table[n], digits, true
		}
	}

	return nil, nil, false
}

// TableCheck verifies that every template has one placeholder digit per
// operand digit, and that no two entries share the same pattern.
func TableCheck(table []Instruction) (err error) {
	seen := make(map[string]int, len(table))

	for n := range table {
		ins := &table[n]

		want := 0
		for _, op := range ins.Operands {
			want += op.Kind.Digits()
		}
		have := 0
		for _, c := range ins.Opcode {
			if c >= 'a' && c <= 'z' {
				have++
			}
		}
		if len(ins.Opcode) != 4 || want != have {
			err = errors.Join(err, Diagnostic{LineNo: n + 1, Severity: SEVERITY_ERROR, Line: ins.String(), Err: ErrOpcodeInvalid})
		}

		signature := ins.String()
		if _, ok := seen[signature]; ok {
			err = errors.Join(err, Diagnostic{LineNo: n + 1, Severity: SEVERITY_ERROR, Line: signature, Err: ErrInstructionInvalid})
		}
		seen[signature] = n
	}

	return
}
