// internal/importer/pdf.go
package importer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// stockLineRe matches CODE;NAME;QTY;PRICE;MIN with ';' or '|' separators
var stockLineRe = regexp.MustCompile(`^[^;|]+([;|][^;|]*){4}$`)

var headerRe = regexp.MustCompile(`(?i)^\s*(code|c[oó]digo)\s*[;|]`)

// ParsePDF extracts the plain text of every page and parses the stock lines in it
func ParsePDF(data []byte) (*Result, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var lines []string
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}

	return ParseLines(lines), nil
}

// ParseLines parses text lines of the form CODE;NAME;QTY;PRICE;MIN.
// Lines without separators are treated as page text and ignored.
func ParseLines(lines []string) *Result {
	result := &Result{}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || headerRe.MatchString(line) {
			continue
		}
		if !strings.ContainsAny(line, ";|") {
			continue
		}

		result.Rows++
		if !stockLineRe.MatchString(line) {
			result.reject(i+1, "expected 5 fields separated by ';' or '|'")
			continue
		}

		fields := strings.Split(strings.ReplaceAll(line, "|", ";"), ";")
		input, err := parseFields(fields)
		if err != nil {
			result.reject(i+1, "%s", err.Error())
			continue
		}
		result.Inputs = append(result.Inputs, input)
	}

	return result
}
