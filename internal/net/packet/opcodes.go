package packet

import "fmt"

// Opcodes. Byte 0 of every payload.
const (
	S_OPCODE_HELLO      byte = 0x01 // [D seed][H protocol] plaintext
	C_OPCODE_APPROVAL   byte = 0x10 // [H protocol][S secret][S name]
	S_OPCODE_APPROVED   byte = 0x11 // [Q owner][H players][H max players]
	S_OPCODE_DISCONNECT byte = 0x12 // [S reason]
	C_OPCODE_CHAT       byte = 0x20 // [S text]
	S_OPCODE_CHAT       byte = 0x21 // [S from][S text]
	C_OPCODE_INPUT      byte = 0x30 // [D tick][H moveX][H moveY][C buttons]
	C_OPCODE_QUIT       byte = 0x3f
)

// ProtocolVersion is sent in S_OPCODE_HELLO and checked on approval.
const ProtocolVersion uint16 = 1

// C_OPCODE_INPUT button bits.
const (
	ButtonJump    byte = 1 << 0
	ButtonAbility byte = 1 << 1
)

var opcodeNames = map[byte]string{
	S_OPCODE_HELLO:      "S_HELLO",
	C_OPCODE_APPROVAL:   "C_APPROVAL",
	S_OPCODE_APPROVED:   "S_APPROVED",
	S_OPCODE_DISCONNECT: "S_DISCONNECT",
	C_OPCODE_CHAT:       "C_CHAT",
	S_OPCODE_CHAT:       "S_CHAT",
	C_OPCODE_INPUT:      "C_INPUT",
	C_OPCODE_QUIT:       "C_QUIT",
}

// OpcodeName returns the symbolic name of op, or its hex value.
func OpcodeName(op byte) string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("0x%02X", op)
}
