package chip8

import (
	"encoding/hex"
)

// Encode converts opcode strings to bytes, most significant byte first.
func Encode(opcodes []string) (data []byte, err error) {
	data = make([]byte, 0, len(opcodes)*INSTRUCTION_SIZE)

	for _, op := range opcodes {
		if len(op) != 2*INSTRUCTION_SIZE {
			return nil, ErrOpcode(op)
		}
		data, err = hex.AppendDecode(data, []byte(op))
		if err != nil {
			return nil, ErrOpcode(op)
		}
	}

	return
}
