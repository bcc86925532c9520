package escpos

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// codepages maps configuration names onto the single-byte encodings the
// common thermal printer families ship with. UTF-8 capable printers
// leave the codepage unset.
var codepages = map[string]encoding.Encoding{
	"cp437":       charmap.CodePage437,
	"cp850":       charmap.CodePage850,
	"cp852":       charmap.CodePage852,
	"cp858":       charmap.CodePage858,
	"windows1252": charmap.Windows1252,
	"gbk":         simplifiedchinese.GBK,
}

// encodeLine re-encodes a UTF-8 line into the requested printer codepage.
// Unknown codepages and unmappable runes fall back to the raw UTF-8
// bytes; a garbled glyph beats a lost line on a sales receipt.
func encodeLine(line, codepage string) string {
	if codepage == "" {
		return line
	}
	enc, ok := codepages[codepage]
	if !ok {
		return line
	}
	out, err := enc.NewEncoder().String(line)
	if err != nil {
		return line
	}
	return out
}
