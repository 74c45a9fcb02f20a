package charset

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDecodeUTF8(t *testing.T) {
	text, enc := Decode([]byte("def héllo():\n    return 'ü'\n"))
	assert.Equal(t, UTF8, enc)
	assert.Equal(t, "def héllo():\n    return 'ü'\n", text)
}

func TestDecodeStripsBOM(t *testing.T) {
	text, _ := Decode([]byte("\xEF\xBB\xBFprint(1)"))
	assert.Equal(t, "print(1)", text)
}

func TestDecodeLatin1(t *testing.T) {
	// "Grüße aus Köln" repeated so detection has enough signal.
	raw := []byte(strings.Repeat("Gr\xfc\xdfe aus K\xf6ln, sch\xf6ne Gr\xfc\xdfe. ", 20))
	text, enc := Decode(raw)
	assert.True(t, utf8.ValidString(text))
	assert.NotEqual(t, UTF8, enc)
	assert.Contains(t, text, "Köln")
}

func TestDecodeAlwaysReturnsValidUTF8(t *testing.T) {
	text, _ := Decode([]byte{0xff, 0xfe, 0xfd, 'a', 0x80})
	assert.True(t, utf8.ValidString(text))
}
