package posting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Resume is caller-owned candidate state. It is passed by value into
// every scoring call; the core keeps no reference to it between runs.
type Resume struct {
	Text string
	// Years is the candidate's declared experience. 0 means unknown
	// and disables the experience guardrail for the candidate side.
	Years int
}

// LoadResume reads resume text from a PDF or plain-text file.
func LoadResume(path string, years int) (*Resume, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("resume file is not configured")
	}

	var (
		text string
		err  error
	)

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = extractPDFText(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		return nil, fmt.Errorf("reading resume %q: %w", path, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("resume %q contains no text", path)
	}

	return &Resume{Text: text, Years: years}, nil
}

func extractPDFText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
	}

	return builder.String(), nil
}
