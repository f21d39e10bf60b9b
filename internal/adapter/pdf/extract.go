// Package pdf extracts lesson material from uploaded PDF documents.
package pdf

import (
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pkg/errors"
)

// ErrUnreadable means the document could not be parsed or held no text.
var ErrUnreadable = errors.New("invalid or corrupted PDF")

// ExtractText returns the text of every page, pages separated by a blank line.
func ExtractText(document []byte) (string, error) {
	if len(document) == 0 {
		return "", errors.Wrap(ErrUnreadable, "empty document")
	}

	pdf, err := fitz.NewFromMemory(document)
	if err != nil {
		return "", errors.Wrap(ErrUnreadable, err.Error())
	}
	defer pdf.Close()

	pages := make([]string, 0, pdf.NumPage())
	for i := 0; i < pdf.NumPage(); i++ {
		pageText, err := pdf.Text(i)
		if err != nil {
			return "", errors.Wrapf(ErrUnreadable, "page %d: %v", i, err)
		}
		pages = append(pages, strings.TrimSpace(pageText))
	}

	text := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if text == "" {
		return "", errors.Wrap(ErrUnreadable, "no extractable text")
	}
	return text, nil
}
