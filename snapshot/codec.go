package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encode serializes rec into the wire format a Sink stores against its
// Hash: a small binary header followed by one fixed-plus-variable entry
// per edge.
func Encode(rec NodeRecord) []byte {
	var buf bytes.Buffer

	var idBuf [8]byte
	binary.LittleEndian.PutUint64(idBuf[:], uint64(rec.ID))
	buf.Write(idBuf[:])

	var stateByte byte
	if rec.HasState {
		stateByte = 1
	}
	buf.WriteByte(stateByte)

	var countBuf [2]byte
	binary.LittleEndian.PutUint16(countBuf[:], uint16(len(rec.Edges)))
	buf.Write(countBuf[:])

	for _, e := range rec.Edges {
		var fixed [8 + 8 + 2 + 1]byte
		binary.LittleEndian.PutUint64(fixed[0:8], uint64(e.InputIndex))
		binary.LittleEndian.PutUint64(fixed[8:16], uint64(e.TargetID))
		binary.LittleEndian.PutUint16(fixed[16:18], uint16(len(e.Output)))
		if e.Reflexive {
			fixed[18] = 1
		}
		buf.Write(fixed[:])
		buf.WriteString(e.Output)
	}

	return buf.Bytes()
}

// Decode parses the wire format produced by Encode.
func Decode(data []byte) (NodeRecord, error) {
	if len(data) < 8+1+2 {
		return NodeRecord{}, fmt.Errorf("snapshot: record too short (%d bytes)", len(data))
	}

	rec := NodeRecord{
		ID:       int(binary.LittleEndian.Uint64(data[0:8])),
		HasState: data[8] == 1,
	}
	count := binary.LittleEndian.Uint16(data[9:11])
	pos := 11

	for i := uint16(0); i < count; i++ {
		if pos+19 > len(data) {
			return NodeRecord{}, fmt.Errorf("snapshot: truncated edge header at entry %d", i)
		}
		inputIndex := int(binary.LittleEndian.Uint64(data[pos : pos+8]))
		targetID := int(binary.LittleEndian.Uint64(data[pos+8 : pos+16]))
		outputLen := int(binary.LittleEndian.Uint16(data[pos+16 : pos+18]))
		reflexive := data[pos+18] == 1
		pos += 19

		if pos+outputLen > len(data) {
			return NodeRecord{}, fmt.Errorf("snapshot: truncated output at entry %d", i)
		}
		output := string(data[pos : pos+outputLen])
		pos += outputLen

		rec.Edges = append(rec.Edges, EdgeRecord{
			InputIndex: inputIndex,
			Output:     output,
			TargetID:   targetID,
			Reflexive:  reflexive,
		})
	}

	return rec, nil
}
