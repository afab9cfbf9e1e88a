package types

import "time"

// AgentMessage represents a message in the format expected by the LLM API.
type AgentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryMessage is a prior conversation message supplied by the caller.
// Timestamp is optional; when present it is used to restore chronological
// order before the history window is applied.
type HistoryMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// DocumentMetadata describes what the parser learned about an uploaded file.
// Fields beyond Type are populated only when the format could be parsed.
type DocumentMetadata struct {
	Type     string   `json:"type"`
	Headers  []string `json:"headers,omitempty"`
	RowCount int      `json:"row_count,omitempty"`
	Columns  int      `json:"columns,omitempty"`
	Preview  []any    `json:"preview,omitempty"`
}

// ParsedDocument is the normalized result of parsing an uploaded file.
// Content is always a string; parse failures degrade to an explanatory
// placeholder rather than an error.
type ParsedDocument struct {
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
}

// FetchedContent is the result of extracting readable text from a URL.
// Success == false implies Content == "" and Error is set.
type FetchedContent struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Description   string `json:"description,omitempty"`
	Author        string `json:"author,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	SiteName      string `json:"site_name,omitempty"`
	WordCount     int    `json:"word_count"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// ContextDocument is a document attached to a conversation, as the
// caller hands it to the analysis engine.
type ContextDocument struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// AnalysisContext is the transient input to one analysis call.
type AnalysisContext struct {
	Documents        []ContextDocument `json:"documents"`
	PreviousMessages []HistoryMessage  `json:"previous_messages"`
}

// Chart kinds understood by the front end. Anything else is rejected
// before it can reach a persisted chart.
const (
	ChartTypeBar     = "bar"
	ChartTypeLine    = "line"
	ChartTypePie     = "pie"
	ChartTypeArea    = "area"
	ChartTypeScatter = "scatter"
)

// ValidChartType reports whether t is one of the five supported kinds.
func ValidChartType(t string) bool {
	switch t {
	case ChartTypeBar, ChartTypeLine, ChartTypePie, ChartTypeArea, ChartTypeScatter:
		return true
	}
	return false
}

// ChartSuggestion is a structured visualization proposal, either emitted
// by the model inside a fenced block or produced heuristically.
type ChartSuggestion struct {
	Type        string           `json:"type"`
	Title       string           `json:"title"`
	Data        []map[string]any `json:"data"`
	Description string           `json:"description"`
}

// ChartConfig is a render-ready chart description. It is derived from
// Data and regenerable at any time; it is not stored verbatim.
type ChartConfig struct {
	Type       string           `json:"type"`
	Title      string           `json:"title"`
	Data       []map[string]any `json:"data"`
	Colors     []string         `json:"colors"`
	Background string           `json:"background"`
	FontFamily string           `json:"font_family"`
	ShowLegend bool             `json:"show_legend"`
	ShowGrid   bool             `json:"show_grid"`
	XAxisKey   string           `json:"x_axis_key,omitempty"`
	YAxisKeys  []string         `json:"y_axis_keys"`
}
