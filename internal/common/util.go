package common

import (
	"encoding/hex"
	"io"
)

// ReadRandHexString reads exactly size bytes from r and hex encodes them.
// The result is twice as long as size.
func ReadRandHexString(r io.Reader, size int) (string, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. It is used for passwords read from
// the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
