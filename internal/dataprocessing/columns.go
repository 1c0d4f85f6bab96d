package dataprocessing

import (
	"fmt"
	"strings"
)

// columns maps header names to record indexes
type columns map[string]int

// headerColumns indexes header and checks that all required names are present
func headerColumns(header []string, required ...string) (columns, error) {
	c := make(columns, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := c[name]; !dup {
			c[name] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := c[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns %v", missing)
	}
	return c, nil
}

// get returns the trimmed value of a column, "" when the record is too short
func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
