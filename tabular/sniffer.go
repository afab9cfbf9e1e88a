package tabular

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Detection is the result of sniffing a chat message for pasted data.
// Columns preserves the original column order (header order for CSV,
// sorted key order for JSON) so downstream chart building is deterministic.
type Detection struct {
	HasData  bool
	DataType string // "json" or "csv"; empty when HasData is false
	Columns  []string
	Rows     []map[string]any
}

// Detect looks for machine-readable tabular data pasted into free-form
// message text. It tries, in order: a JSON array literal, a JSON object
// literal, and delimiter-separated lines. Malformed candidates are treated
// as "no match" and fall through to the next strategy; no error escapes.
func Detect(message string) Detection {
	if d, ok := detectJSONArray(message); ok {
		return d
	}
	if d, ok := detectJSONObject(message); ok {
		return d
	}
	if d, ok := detectDelimited(message); ok {
		return d
	}
	return Detection{}
}

func detectJSONArray(message string) (Detection, bool) {
	start := strings.Index(message, "[")
	end := strings.LastIndex(message, "]")
	if start == -1 || end <= start {
		return Detection{}, false
	}

	var rows []map[string]any
	if err := json.Unmarshal([]byte(message[start:end+1]), &rows); err != nil || len(rows) == 0 {
		return Detection{}, false
	}

	return Detection{
		HasData:  true,
		DataType: "json",
		Columns:  sortedKeys(rows[0]),
		Rows:     rows,
	}, true
}

func detectJSONObject(message string) (Detection, bool) {
	start := strings.Index(message, "{")
	end := strings.LastIndex(message, "}")
	if start == -1 || end <= start {
		return Detection{}, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(message[start:end+1]), &obj); err != nil || len(obj) == 0 {
		return Detection{}, false
	}

	return Detection{
		HasData:  true,
		DataType: "json",
		Columns:  sortedKeys(obj),
		Rows:     []map[string]any{obj},
	}, true
}

func detectDelimited(message string) (Detection, bool) {
	var lines []string
	for _, line := range strings.Split(message, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) < 2 {
		return Detection{}, false
	}

	delimiter := ","
	if strings.Contains(lines[0], "\t") {
		delimiter = "\t"
	}

	headers := splitFields(lines[0], delimiter)
	if len(headers) < 2 {
		return Detection{}, false
	}

	// Tolerate a single missing/extra trailing field per line; anything
	// further off means the text is prose, not a table.
	for _, line := range lines[1:] {
		diff := len(splitFields(line, delimiter)) - len(headers)
		if diff < -1 || diff > 1 {
			return Detection{}, false
		}
	}

	rows := make([]map[string]any, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitFields(line, delimiter)
		row := make(map[string]any, len(headers))
		for i, header := range headers {
			if i >= len(fields) {
				break
			}
			row[header] = coerceValue(fields[i])
		}
		rows = append(rows, row)
	}

	return Detection{
		HasData:  true,
		DataType: "csv",
		Columns:  headers,
		Rows:     rows,
	}, true
}

func splitFields(line, delimiter string) []string {
	parts := strings.Split(line, delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// coerceValue converts a cell to a number when it round-trips through
// numeric parsing, otherwise leaves it as a string.
func coerceValue(cell string) any {
	if cell == "" {
		return cell
	}
	if n, err := strconv.ParseFloat(cell, 64); err == nil {
		return n
	}
	return cell
}

func sortedKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
