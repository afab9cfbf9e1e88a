package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"insight-agent/assembler"
	"insight-agent/charts"
	"insight-agent/tabular"
	"insight-agent/types"
)

const (
	heuristicMaxChartRows    = 20
	summaryMinSentenceLen    = 30
	summaryMaxSentenceLen    = 500
	summaryMaxSentences      = 5
	summaryMaxIndicatorPicks = 3
)

const demoDisclaimer = "(Demo mode: no language model is configured, so this response was generated by built-in rules. Configure model credentials for full analysis.)"

// Keyword sets are policy, pinned by tests. Matching is case-insensitive
// substring matching over the whole message.
var (
	chartKeywords = []string{"chart", "graph", "plot", "visualize", "visualization", "show me"}

	summaryKeywords = []string{
		"summarize", "summary", "overview", "main points", "key points",
		"what is this about", "tell me about",
	}

	importanceIndicators = []string{
		"conclude", "result", "finding", "significant", "important",
		"demonstrat", "suggest", "increase", "decrease", "%",
	}

	sentenceSplitPattern = regexp.MustCompile(`[.!?]+\s+`)
)

// HeuristicResponder is the deterministic, keyword-driven fallback used
// whenever no language model is reachable. It is an ordered list of
// predicate/handler pairs evaluated top to bottom; identical inputs
// always produce identical output.
type HeuristicResponder struct {
	assembler *assembler.Assembler
	logger    *zap.Logger
}

func NewHeuristicResponder(asm *assembler.Assembler, logger *zap.Logger) *HeuristicResponder {
	return &HeuristicResponder{assembler: asm, logger: logger}
}

func (h *HeuristicResponder) Respond(userMessage string, ac types.AnalysisContext) Response {
	lower := strings.ToLower(userMessage)

	if det := tabular.Detect(userMessage); det.HasData {
		return h.chartFromPastedData(lower, det)
	}

	if urls := h.assembler.DetectURLs(userMessage); len(urls) > 0 {
		return h.urlsWithoutModel(urls)
	}

	if containsAny(lower, chartKeywords) {
		return h.sampleChart(lower)
	}

	if len(ac.Documents) == 0 {
		return h.onboarding()
	}

	if containsAny(lower, summaryKeywords) {
		return h.pseudoSummary(ac.Documents[0])
	}

	return h.capabilities(ac.Documents)
}

// chartFromPastedData builds a chart directly from data the user pasted
// into the message.
func (h *HeuristicResponder) chartFromPastedData(lower string, det tabular.Detection) Response {
	chartType := keywordChartType(lower)

	rows := det.Rows
	if len(rows) > heuristicMaxChartRows {
		rows = rows[:heuristicMaxChartRows]
	}

	nameKey := ""
	for _, col := range det.Columns {
		if _, ok := rows[0][col].(string); ok {
			nameKey = col
			break
		}
	}

	var valueKeys []string
	for _, col := range det.Columns {
		if _, ok := rows[0][col].(float64); ok {
			valueKeys = append(valueKeys, col)
		}
	}

	// No numeric column at all: coerce the first non-name column so the
	// chart still has a value series.
	if len(valueKeys) == 0 {
		for _, col := range det.Columns {
			if col == nameKey {
				continue
			}
			coerced := make([]map[string]any, len(rows))
			for i, row := range rows {
				clone := make(map[string]any, len(row))
				for k, v := range row {
					clone[k] = v
				}
				n := 0.0
				if s, ok := row[col].(string); ok {
					if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
						n = parsed
					}
				}
				clone[col] = n
				coerced[i] = clone
			}
			rows = coerced
			valueKeys = []string{col}
			break
		}
	}

	chart := &types.ChartSuggestion{
		Type:        chartType,
		Title:       "Chart of Your Data",
		Data:        rows,
		Description: fmt.Sprintf("A %s chart built from the %d rows of %s data you pasted.", chartType, len(rows), det.DataType),
	}

	text := fmt.Sprintf(
		"I found %s data in your message (%d rows) and built a %s chart from it. The %q field is used for labels and %s for values.\n\n%s",
		det.DataType, len(rows), chartType, nameKey, strings.Join(quoteAll(valueKeys), ", "), demoDisclaimer)

	return Response{Text: text, Chart: chart}
}

func (h *HeuristicResponder) urlsWithoutModel(urls []string) Response {
	var b strings.Builder
	b.WriteString("I detected the following links in your message:\n\n")
	for _, u := range urls {
		b.WriteString("• ")
		b.WriteString(u)
		b.WriteString("\n")
	}
	b.WriteString("\nFetching and analyzing web pages requires a configured language model. ")
	b.WriteString(demoDisclaimer)
	return Response{Text: b.String()}
}

// sampleChart answers chart-intent messages with one of the fixed sample
// datasets, wrapped in demo-mode text.
func (h *HeuristicResponder) sampleChart(lower string) Response {
	chartType := keywordChartType(lower)
	sample := charts.SampleData(chartType)

	chart := &types.ChartSuggestion{
		Type:        chartType,
		Title:       fmt.Sprintf("Sample %s Chart", titleCase(chartType)),
		Data:        sample,
		Description: fmt.Sprintf("An illustrative %s chart with sample data.", chartType),
	}

	text := fmt.Sprintf(
		"Here is a sample %s chart to illustrate what I can build. Paste your own data (CSV or JSON) or upload a document and I will chart that instead.\n\n%s",
		chartType, demoDisclaimer)

	return Response{Text: text, Chart: chart}
}

func (h *HeuristicResponder) onboarding() Response {
	return Response{Text: "Welcome! Upload a document (CSV, JSON, PDF, or plain text), paste data directly into the chat, or share a link, and I will help you analyze it. You can also ask for a sample chart to see what visualizations look like.\n\n" + demoDisclaimer}
}

// pseudoSummary selects representative sentences from the first attached
// document: the first two plus up to three carrying importance
// indicators, de-duplicated and capped.
func (h *HeuristicResponder) pseudoSummary(doc types.ContextDocument) Response {
	sentences := splitSentences(doc.Content)

	var candidates []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if len(s) < summaryMinSentenceLen || len(s) > summaryMaxSentenceLen {
			continue
		}
		// All-caps lines are headers, not sentences.
		if s == strings.ToUpper(s) {
			continue
		}
		candidates = append(candidates, s)
	}

	var selected []string
	seen := make(map[string]bool)
	pick := func(s string) {
		if !seen[s] && len(selected) < summaryMaxSentences {
			seen[s] = true
			selected = append(selected, s)
		}
	}

	for i := 0; i < 2 && i < len(candidates); i++ {
		pick(candidates[i])
	}
	indicatorPicks := 0
	for _, s := range candidates {
		if indicatorPicks >= summaryMaxIndicatorPicks {
			break
		}
		if containsAny(strings.ToLower(s), importanceIndicators) && !seen[s] {
			pick(s)
			indicatorPicks++
		}
	}

	if len(selected) == 0 {
		return Response{Text: fmt.Sprintf("I could not extract representative sentences from %s. The document may be too short or not contain prose.\n\n%s", doc.Name, demoDisclaimer)}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Summary of %s:\n\n", doc.Name))
	for _, s := range selected {
		b.WriteString("• ")
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(demoDisclaimer)

	return Response{Text: b.String()}
}

func (h *HeuristicResponder) capabilities(docs []types.ContextDocument) Response {
	names := make([]string, len(docs))
	for i, doc := range docs {
		names[i] = doc.Name
	}

	text := fmt.Sprintf(
		"You have %d document(s) attached: %s. I can summarize them, answer questions about their content, or build charts from tabular data. Try asking for a summary or pasting data to visualize.\n\n%s",
		len(docs), strings.Join(names, ", "), demoDisclaimer)

	return Response{Text: text}
}

// keywordChartType picks the chart kind from message keywords; bar is
// the default.
func keywordChartType(lower string) string {
	switch {
	case strings.Contains(lower, "line"):
		return types.ChartTypeLine
	case strings.Contains(lower, "pie"):
		return types.ChartTypePie
	case strings.Contains(lower, "area"):
		return types.ChartTypeArea
	default:
		return types.ChartTypeBar
	}
}

// splitSentences segments prose into sentences, preferring the prose
// tokenizer and degrading to a regex split if it fails.
func splitSentences(text string) []string {
	doc, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err == nil {
		sentences := doc.Sentences()
		out := make([]string, len(sentences))
		for i, s := range sentences {
			out[i] = s.Text
		}
		return out
	}
	return sentenceSplitPattern.Split(text, -1)
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Quote(v)
	}
	return out
}
