package relate

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// isNameByte reports whether c may appear in a placeholder name.
func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_'
}

// writeInt appends the decimal form of n without allocating.
func writeInt(buf *bytebufferpool.ByteBuffer, n int) {
	buf.B = strconv.AppendInt(buf.B, int64(n), 10)
}
