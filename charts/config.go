package charts

import (
	"sort"
	"strings"

	"insight-agent/types"
)

// defaultPalette is the fixed 8-color palette applied when the caller
// supplies no colors.
var defaultPalette = []string{
	"#6366f1", "#22d3ee", "#f59e0b", "#10b981",
	"#ef4444", "#a855f7", "#f472b6", "#84cc16",
}

const (
	defaultBackground = "#111827"
	defaultFontFamily = "Inter, system-ui, sans-serif"
)

// timeVocabulary marks keys that indicate a temporal axis.
var timeVocabulary = []string{"date", "time", "month", "year", "week", "day"}

// Options are caller overrides merged over the defaults.
type Options struct {
	Title      string   `json:"title,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	Background string   `json:"background,omitempty"`
	FontFamily string   `json:"font_family,omitempty"`
	ShowLegend *bool    `json:"show_legend,omitempty"`
	ShowGrid   *bool    `json:"show_grid,omitempty"`
}

// GenerateConfig inspects the first data row to infer axis keys and
// merges caller overrides over the defaults. Key inspection is done in
// sorted key order so identical data always yields an identical config.
func GenerateConfig(chartType string, data []map[string]any, opts Options) types.ChartConfig {
	cfg := types.ChartConfig{
		Type:       chartType,
		Title:      opts.Title,
		Data:       data,
		Colors:     defaultPalette,
		Background: defaultBackground,
		FontFamily: defaultFontFamily,
		ShowLegend: true,
		ShowGrid:   true,
	}

	if len(opts.Colors) > 0 {
		cfg.Colors = opts.Colors
	}
	if opts.Background != "" {
		cfg.Background = opts.Background
	}
	if opts.FontFamily != "" {
		cfg.FontFamily = opts.FontFamily
	}
	if opts.ShowLegend != nil {
		cfg.ShowLegend = *opts.ShowLegend
	}
	if opts.ShowGrid != nil {
		cfg.ShowGrid = *opts.ShowGrid
	}

	if len(data) == 0 {
		return cfg
	}

	keys := sortedKeys(data[0])
	for _, key := range keys {
		if _, ok := data[0][key].(string); ok {
			cfg.XAxisKey = key
			break
		}
	}
	if cfg.XAxisKey == "" && len(keys) > 0 {
		cfg.XAxisKey = keys[0]
	}

	for _, key := range keys {
		if isNumeric(data[0][key]) {
			cfg.YAxisKeys = append(cfg.YAxisKeys, key)
		}
	}

	return cfg
}

// SampleData returns a fixed illustrative dataset for the chart type,
// used whenever real data is unavailable.
func SampleData(chartType string) []map[string]any {
	switch chartType {
	case types.ChartTypeLine:
		return []map[string]any{
			{"month": "Jan", "users": 420.0},
			{"month": "Feb", "users": 510.0},
			{"month": "Mar", "users": 640.0},
			{"month": "Apr", "users": 720.0},
			{"month": "May", "users": 890.0},
			{"month": "Jun", "users": 1020.0},
		}
	case types.ChartTypeArea:
		return []map[string]any{
			{"month": "Jan", "visits": 3200.0, "signups": 240.0},
			{"month": "Feb", "visits": 3900.0, "signups": 310.0},
			{"month": "Mar", "visits": 4400.0, "signups": 380.0},
			{"month": "Apr", "visits": 5100.0, "signups": 460.0},
			{"month": "May", "visits": 5800.0, "signups": 540.0},
			{"month": "Jun", "visits": 6500.0, "signups": 620.0},
		}
	case types.ChartTypePie:
		return []map[string]any{
			{"category": "Research", "value": 35.0},
			{"category": "Engineering", "value": 28.0},
			{"category": "Marketing", "value": 18.0},
			{"category": "Operations", "value": 12.0},
			{"category": "Other", "value": 7.0},
		}
	default:
		return []map[string]any{
			{"quarter": "Q1", "revenue": 120.0, "expenses": 85.0},
			{"quarter": "Q2", "revenue": 150.0, "expenses": 92.0},
			{"quarter": "Q3", "revenue": 180.0, "expenses": 101.0},
			{"quarter": "Q4", "revenue": 210.0, "expenses": 110.0},
		}
	}
}

// DetectType guesses the best chart kind for arbitrary tabular data. It
// is pure: identical input always yields the identical type.
func DetectType(data []map[string]any) string {
	if len(data) == 0 {
		return types.ChartTypeBar
	}

	first := data[0]
	keys := sortedKeys(first)

	numericFields := 0
	for _, key := range keys {
		if isNumeric(first[key]) {
			numericFields++
		}
	}

	for _, key := range keys {
		lower := strings.ToLower(key)
		for _, word := range timeVocabulary {
			if strings.Contains(lower, word) {
				if numericFields > 1 {
					return types.ChartTypeArea
				}
				return types.ChartTypeLine
			}
		}
	}

	// Small discrete distributions read better as a pie.
	if numericFields == 1 && len(data) <= 6 {
		return types.ChartTypePie
	}

	return types.ChartTypeBar
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return true
	}
	return false
}

func sortedKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
