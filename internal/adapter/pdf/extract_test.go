package pdf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a one-page document showing text, with a valid xref table.
func buildPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 18 Tf 10 100 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 300 144] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText(buildPDF("Hello PDF"))
	require.NoError(t, err)
	assert.Contains(t, text, "Hello PDF")
}

func TestExtractTextRejectsGarbage(t *testing.T) {
	_, err := ExtractText([]byte("definitely not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestExtractTextRejectsEmpty(t *testing.T) {
	_, err := ExtractText(nil)
	assert.ErrorIs(t, err, ErrUnreadable)
}
