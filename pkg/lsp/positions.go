package lsp

import (
	"strings"
	"unicode/utf16"
)

// lineAt returns the 0-based line of text without its line terminator.
func lineAt(text string, line int) string {
	for i := 0; i < line; i++ {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 {
			return ""
		}
		text = text[nl+1:]
	}
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[:nl]
	}
	return strings.TrimSuffix(text, "\r")
}

// byteToUTF16 converts a byte offset within line to UTF-16 code units, the
// unit LSP positions are measured in.
func byteToUTF16(line string, col int) int {
	col = min(max(col, 0), len(line))
	units := 0
	for _, r := range line[:col] {
		units += utf16.RuneLen(r)
	}
	return units
}

// utf16ToByte converts a UTF-16 offset within line to a byte offset.
func utf16ToByte(line string, col int) int {
	units := 0
	for i, r := range line {
		if units >= col {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(line)
}
