package bridge

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EncodingAuto selects the console codec by BOM sniffing.
const EncodingAuto = "auto"

// codecs maps accepted console encoding names to decoders. A nil entry
// means the stream is already UTF-8 and passes through.
var codecs = map[string]encoding.Encoding{
	"":           nil,
	"utf8":       nil,
	"utf-8":      nil,
	"cp1252":     charmap.Windows1252,
	"latin1":     charmap.Windows1252,
	"iso-8859-1": charmap.Windows1252,
	"cp850":      charmap.CodePage850,
	"utf16le":    unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16le":   unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf16be":    unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf-16be":   unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

// ValidateEncoding rejects unknown console encoding names up front,
// before any process is started.
func ValidateEncoding(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == EncodingAuto {
		return nil
	}
	if _, ok := codecs[name]; !ok {
		return fmt.Errorf("unsupported console encoding %q (supported: utf8, cp1252, cp850, utf16le, utf16be, auto)", name)
	}
	return nil
}

// newConsoleReader wraps a child output stream so the caller always
// sees UTF-8. With "auto" the first bytes are peeked for a BOM; this
// blocks until the child writes, so callers wrap inside the forwarding
// goroutine, never before the child is started.
func newConsoleReader(r io.Reader, name string) io.Reader {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == EncodingAuto {
		return newBOMSniffingReader(r)
	}
	enc := codecs[name]
	if enc == nil {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

func newBOMSniffingReader(r io.Reader) io.Reader {
	buf := make([]byte, 4)
	n, err := io.ReadAtLeast(r, buf, 2)
	if err != nil && n == 0 {
		return r
	}
	peek := buf[:n]
	combined := io.MultiReader(bytes.NewReader(peek), r)

	enc := bomEncoding(peek)
	if enc == nil {
		return combined
	}
	return transform.NewReader(combined, enc.NewDecoder())
}

// bomEncoding maps a byte-order mark to its decoder. No BOM (or a
// UTF-8 BOM) means passthrough.
func bomEncoding(peek []byte) encoding.Encoding {
	switch {
	case len(peek) >= 2 && peek[0] == 0xFF && peek[1] == 0xFE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case len(peek) >= 2 && peek[0] == 0xFE && peek[1] == 0xFF:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return nil
	}
}
