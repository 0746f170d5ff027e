package bridge

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestValidateEncoding(t *testing.T) {
	for _, name := range []string{"", "utf8", "UTF-8", "cp1252", "latin1", "cp850", "utf16le", "utf16be", "auto"} {
		if err := ValidateEncoding(name); err != nil {
			t.Errorf("ValidateEncoding(%q) = %v, want nil", name, err)
		}
	}
	if err := ValidateEncoding("ebcdic"); err == nil {
		t.Error("ValidateEncoding(ebcdic) = nil, want error")
	}
}

func TestConsoleReader_Passthrough(t *testing.T) {
	r := newConsoleReader(strings.NewReader("plain utf-8 ä"), "utf8")
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "plain utf-8 ä" {
		t.Errorf("got %q", got)
	}
}

func TestConsoleReader_CP1252(t *testing.T) {
	// "café" in Windows-1252: é is 0xE9.
	r := newConsoleReader(bytes.NewReader([]byte{'c', 'a', 'f', 0xE9}), "cp1252")
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "café" {
		t.Errorf("got %q, want café", got)
	}
}

func TestConsoleReader_UTF16LE(t *testing.T) {
	// "hi" little-endian, no BOM.
	r := newConsoleReader(bytes.NewReader([]byte{'h', 0, 'i', 0}), "utf16le")
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hi" {
		t.Errorf("got %q, want hi", got)
	}
}

func TestConsoleReader_AutoDetectsBOM(t *testing.T) {
	// UTF-16 LE BOM followed by "ok".
	data := []byte{0xFF, 0xFE, 'o', 0, 'k', 0}
	r := newConsoleReader(bytes.NewReader(data), "auto")
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ok" {
		t.Errorf("got %q, want ok", got)
	}
}

func TestConsoleReader_AutoWithoutBOMPassesThrough(t *testing.T) {
	r := newConsoleReader(strings.NewReader("no bom here"), "auto")
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "no bom here" {
		t.Errorf("got %q", got)
	}
}

func TestConsoleReader_AutoEmptyStream(t *testing.T) {
	r := newConsoleReader(strings.NewReader(""), "auto")
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d bytes, want 0", len(got))
	}
}
