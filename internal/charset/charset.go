// Package charset decodes source files of unknown encoding into UTF-8.
package charset

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// UTF8 is the name reported for text that needed no conversion.
const UTF8 = "utf-8"

// minConfidence is the chardet confidence below which detection is ignored.
const minConfidence = 30

// Decode converts raw bytes to UTF-8 text. Valid UTF-8 is returned as is.
// Otherwise the charset is guessed statistically; an inconclusive or
// unsupported guess falls back to UTF-8 with invalid sequences dropped.
// The second result names the encoding used.
func Decode(raw []byte) (string, string) {
	raw = trimBOM(raw)
	if utf8.Valid(raw) {
		return string(raw), UTF8
	}

	res, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil || res.Confidence < minConfidence {
		return lossy(raw), UTF8
	}
	enc := lookup(res.Charset)
	if enc == nil {
		return lossy(raw), UTF8
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return lossy(raw), UTF8
	}
	return string(out), strings.ToLower(res.Charset)
}

func lookup(name string) encoding.Encoding {
	if enc, err := htmlindex.Get(name); err == nil {
		return enc
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc
	}
	return nil
}

func lossy(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "")
}

func trimBOM(raw []byte) []byte {
	if len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF {
		return raw[3:]
	}
	return raw
}
