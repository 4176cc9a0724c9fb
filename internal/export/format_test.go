package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"PDF", FormatPDF},
		{"pdf", FormatPDF},
		{" Pdf ", FormatPDF},
		{"Excel", FormatExcel},
		{"EXCEL", FormatExcel},
		{"xlsx", FormatExcel},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormat_Filename(t *testing.T) {
	assert.Equal(t, "project.pdf", FormatPDF.Filename())
	assert.Equal(t, "project.xlsx", FormatExcel.Filename())
	assert.True(t, FormatPDF.Valid())
	assert.False(t, Format("Word").Valid())
}
