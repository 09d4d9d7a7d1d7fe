package services

import (
	"encoding/binary"
	"fmt"
)

const abiWordSize = 32

// EncodeCommandParams encodes each structured command parameter as an
// ABI dynamic byte string: a 32-byte big-endian length word followed by
// the UTF-8 content right-padded to a 32-byte boundary. The encoding is
// deterministic so the chain contract and the proof circuit agree on
// the bytes being authorized.
func EncodeCommandParams(params []string) ([][]byte, error) {
	encoded := make([][]byte, 0, len(params))
	for i, param := range params {
		if param == "" {
			return nil, fmt.Errorf("command parameter %d is empty", i)
		}

		content := []byte(param)
		padded := (len(content) + abiWordSize - 1) / abiWordSize * abiWordSize

		buf := make([]byte, abiWordSize+padded)
		binary.BigEndian.PutUint64(buf[abiWordSize-8:abiWordSize], uint64(len(content)))
		copy(buf[abiWordSize:], content)

		encoded = append(encoded, buf)
	}
	return encoded, nil
}
