// internal/importer/importer.go

// Package importer turns spreadsheet and PDF stock lists into add-item inputs.
package importer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ammerola/stock-be/internal/core/ports"
)

// RowError describes a row that could not be imported
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result holds the parsed inputs and the rejected rows of one import
type Result struct {
	Inputs []ports.AddItemInput `json:"-"`
	Errors []RowError           `json:"errors,omitempty"`
	Rows   int                  `json:"rows"`
}

func (r *Result) reject(row int, format string, args ...interface{}) {
	r.Errors = append(r.Errors, RowError{Row: row, Reason: fmt.Sprintf(format, args...)})
}

// parseFields converts the five columns code, name, quantity, price and minimum stock
func parseFields(fields []string) (ports.AddItemInput, error) {
	if len(fields) < 5 {
		return ports.AddItemInput{}, fmt.Errorf("expected 5 columns, got %d", len(fields))
	}

	code := strings.TrimSpace(fields[0])
	name := strings.TrimSpace(fields[1])
	if code == "" {
		return ports.AddItemInput{}, fmt.Errorf("code is required")
	}
	if name == "" {
		return ports.AddItemInput{}, fmt.Errorf("name is required")
	}

	quantity, err := parseWhole(fields[2])
	if err != nil {
		return ports.AddItemInput{}, fmt.Errorf("invalid quantity %q: %w", fields[2], err)
	}

	price, err := parseCurrency(fields[3])
	if err != nil {
		return ports.AddItemInput{}, fmt.Errorf("invalid price %q: %w", fields[3], err)
	}

	minimum, err := parseWhole(fields[4])
	if err != nil {
		return ports.AddItemInput{}, fmt.Errorf("invalid minimum stock %q: %w", fields[4], err)
	}

	input := ports.AddItemInput{
		Code:         code,
		Name:         name,
		Quantity:     quantity,
		UnitPrice:    price,
		MinimumStock: minimum,
	}

	// rows the service would refuse are rejected here so the rest of the file still imports
	item := input.ToItem()
	if err := item.Validate(); err != nil {
		return ports.AddItemInput{}, err
	}
	return input, nil
}

var (
	maxWhole = decimal.NewFromInt(math.MaxInt)
	minWhole = decimal.NewFromInt(math.MinInt)

	errOutOfRange = errors.New("out of range")
)

// parseWhole accepts "10" as well as spreadsheet renderings such as "10.0"
func parseWhole(val string) (int, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(val)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("not a whole number")
	}
	if d.GreaterThan(maxWhole) || d.LessThan(minWhole) {
		return 0, errOutOfRange
	}
	return int(d.IntPart()), nil
}

// parseCurrency strips currency symbols and accepts a comma as decimal separator
func parseCurrency(val string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(val)
	cleaned = strings.TrimPrefix(cleaned, "R$")
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") {
			// 1.234,56
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	return decimal.NewFromString(cleaned)
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
