package packet

import (
	"fmt"
	"strings"
)

// Dump renders b as hex bytes followed by their printable ASCII form,
// with unprintable characters shown as dots. Useful when logging
// unrelated traffic picked up on a raw socket.
func Dump(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b)*4 + 1)
	for _, c := range b {
		fmt.Fprintf(&sb, "%02X ", c)
	}
	sb.WriteByte(';')
	for _, c := range b {
		if c < 32 || c > 126 {
			sb.WriteByte('.')
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
