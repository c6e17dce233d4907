package pdf

import (
	"fmt"
)

// PageTexts returns the plain text of every page in document order. The
// password is the result of a prior Unlock; pass the empty string for
// unencrypted documents. Pages that yield no extractable text come back as
// empty strings so page indices stay aligned.
func PageTexts(data []byte, password string) ([]string, error) {
	r, err := open(data, password)
	if err != nil {
		return nil, fmt.Errorf("pdf: open document: %w", err)
	}

	n := r.NumPage()
	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page leaves a gap; extraction continues
			// with the rest of the document.
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}
