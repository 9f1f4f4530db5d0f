package rpc

import "encoding/binary"

// Space script opcodes understood by the protocol interpreter. The
// client only ever constructs payloads; it never evaluates them.
const (
	opSetFallback byte = 0x01
)

// CreateSetFallback builds the script payload associating raw fallback
// data with a space: the opcode followed by a uvarint length and the
// data itself.
func CreateSetFallback(data []byte) ScriptBytes {
	script := make([]byte, 0, len(data)+binary.MaxVarintLen64+1)
	script = append(script, opSetFallback)
	script = binary.AppendUvarint(script, uint64(len(data)))
	return append(script, data...)
}
