// internal/ingest/csv.go
package ingest

import (
	"strconv"
	"strings"

	"churn-analytics/internal/common/errors"
)

// ParseCSV turns raw delimited text into ordered rows of named fields.
// The first non-blank line is the header. Data rows whose field count
// does not match the header are silently dropped. Field values that
// parse fully as numbers are coerced to float64; everything else stays
// a string.
func ParseCSV(text string) ([]map[string]any, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, errors.NewMalformedInputError("need a header line and at least one data line")
	}

	headers := splitFields(lines[0])
	rows := make([]map[string]any, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitFields(line)
		if len(fields) != len(headers) {
			continue
		}
		row := make(map[string]any, len(headers))
		for i, header := range headers {
			row[header] = coerceValue(fields[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	fields := make([]string, len(parts))
	for i, part := range parts {
		field := strings.TrimSpace(part)
		field = strings.Trim(field, `"`)
		fields[i] = strings.TrimSpace(field)
	}
	return fields
}

func coerceValue(field string) any {
	if field == "" {
		return field
	}
	if num, err := strconv.ParseFloat(field, 64); err == nil {
		return num
	}
	return field
}
