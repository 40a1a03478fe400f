package timedataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNoValues       = errors.New("no numeric values found")
	ErrNonNumericCell = errors.New("non-numeric value")
)

var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"nan":  {},
	"null": {},
	"none": {},
	"n/a":  {},
}

func isMissing(s string) bool {
	_, ok := missingTokens[strings.ToLower(s)]
	return ok
}

// ReadValues reads the first column of a CSV as numeric observations. A non-numeric
// first row is treated as a header and missing cells are dropped.
func ReadValues(r io.Reader) ([]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var values []float64
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read csv, %w", err)
		}
		row++
		if len(record) == 0 {
			continue
		}

		cell := strings.TrimSpace(record[0])
		if row == 1 {
			cell = strings.TrimPrefix(cell, "\ufeff")
		}
		if isMissing(cell) {
			continue
		}

		val, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(val) {
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("row %d has value %q, %w", row, cell, ErrNonNumericCell)
		}
		values = append(values, val)
	}

	if len(values) == 0 {
		return nil, ErrNoValues
	}
	return values, nil
}
