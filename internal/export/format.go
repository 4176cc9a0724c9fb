package export

import (
	"errors"
	"fmt"
	"strings"
)

// Format is a document type the generation service can produce.
type Format string

const (
	FormatPDF   Format = "PDF"
	FormatExcel Format = "Excel"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatPDF, FormatExcel}

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat resolves a format name case-insensitively. File extensions
// ("pdf", "xlsx") are accepted too.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("%w: %q (want PDF or Excel)", ErrUnknownFormat, s)
}

// Valid reports whether f is one of Formats.
func (f Format) Valid() bool {
	return f == FormatPDF || f == FormatExcel
}

// Extension returns the file extension for saved documents.
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return strings.ToLower(string(f))
}

// Filename returns the name the downloaded document is saved under.
func (f Format) Filename() string {
	return "project." + f.Extension()
}
