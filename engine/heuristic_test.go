package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"insight-agent/assembler"
	"insight-agent/config"
	"insight-agent/types"
	"insight-agent/webcontent"
)

func testResponder() *HeuristicResponder {
	cfg := testEngineConfig()
	logger := zap.NewNop()
	asm := assembler.New(cfg, webcontent.NewFetcher(cfg, logger), logger)
	return NewHeuristicResponder(asm, logger)
}

func TestHeuristicPieChartRequest(t *testing.T) {
	h := testResponder()

	resp := h.Respond("show me a pie chart", types.AnalysisContext{})

	require.NotNil(t, resp.Chart)
	assert.Equal(t, types.ChartTypePie, resp.Chart.Type)
	assert.Len(t, resp.Chart.Data, 5)
	assert.Contains(t, resp.Text, "Demo mode")
}

func TestHeuristicChartKeywordsDefaultToBar(t *testing.T) {
	h := testResponder()

	resp := h.Respond("can you visualize this for me", types.AnalysisContext{})

	require.NotNil(t, resp.Chart)
	assert.Equal(t, types.ChartTypeBar, resp.Chart.Type)
}

func TestHeuristicChartFromPastedCSV(t *testing.T) {
	h := testResponder()

	resp := h.Respond("Month,Sales\nJan,100\nFeb,200", types.AnalysisContext{})

	require.NotNil(t, resp.Chart)
	assert.Equal(t, types.ChartTypeBar, resp.Chart.Type)
	require.Len(t, resp.Chart.Data, 2)
	assert.Equal(t, "Jan", resp.Chart.Data[0]["Month"])
	assert.Equal(t, 100.0, resp.Chart.Data[0]["Sales"])
}

func TestHeuristicChartFromPastedDataCapsRows(t *testing.T) {
	h := testResponder()

	var b strings.Builder
	b.WriteString("name,count\n")
	for i := 0; i < 40; i++ {
		b.WriteString("row,1\n")
	}
	resp := h.Respond(b.String(), types.AnalysisContext{})

	require.NotNil(t, resp.Chart)
	assert.Len(t, resp.Chart.Data, 20)
}

func TestHeuristicCoercesWhenNoNumericColumn(t *testing.T) {
	h := testResponder()

	resp := h.Respond("name,amount\nalpha,abc\nbeta,12x", types.AnalysisContext{})

	require.NotNil(t, resp.Chart)
	assert.Equal(t, 0.0, resp.Chart.Data[0]["amount"])
	assert.Equal(t, 0.0, resp.Chart.Data[1]["amount"])
}

func TestHeuristicURLsWithoutModel(t *testing.T) {
	h := testResponder()

	resp := h.Respond("please read https://example.com/report", types.AnalysisContext{})

	assert.Nil(t, resp.Chart)
	assert.Contains(t, resp.Text, "https://example.com/report")
	assert.Contains(t, resp.Text, "language model")
}

func TestHeuristicOnboardingWithoutDocuments(t *testing.T) {
	h := testResponder()

	resp := h.Respond("hello, what can you do?", types.AnalysisContext{})

	assert.Nil(t, resp.Chart)
	assert.Contains(t, resp.Text, "Upload a document")
}

const summarySample = "INTERNAL QUARTERLY REVIEW. The company grew steadily across all markets during the first quarter of the year. Customer retention remained strong in every region we track closely. Weather was mild. Our analysis shows a significant increase in subscription revenue compared to last year. We conclude that the subscription business is now the primary growth driver. Additional appendix tables follow below."

func TestHeuristicPseudoSummary(t *testing.T) {
	h := testResponder()
	ac := types.AnalysisContext{Documents: []types.ContextDocument{
		{Name: "q1-review.txt", Content: summarySample, Type: "text"},
	}}

	resp := h.Respond("please summarize this document", ac)

	assert.Nil(t, resp.Chart)
	assert.Contains(t, resp.Text, "Summary of q1-review.txt")
	// First prose sentences are always selected.
	assert.Contains(t, resp.Text, "grew steadily")
	// Importance indicators pull in the findings.
	assert.Contains(t, resp.Text, "significant increase")
	// All-caps header lines and short sentences are excluded.
	assert.NotContains(t, resp.Text, "INTERNAL QUARTERLY REVIEW")
	assert.NotContains(t, resp.Text, "Weather was mild")
	// Bounded selection.
	assert.LessOrEqual(t, strings.Count(resp.Text, "• "), 5)
}

func TestHeuristicSummaryDeterministic(t *testing.T) {
	h := testResponder()
	ac := types.AnalysisContext{Documents: []types.ContextDocument{
		{Name: "doc.txt", Content: summarySample, Type: "text"},
	}}

	first := h.Respond("give me an overview", ac)
	second := h.Respond("give me an overview", ac)

	assert.Equal(t, first, second)
}

func TestHeuristicCapabilitiesWithDocuments(t *testing.T) {
	h := testResponder()
	ac := types.AnalysisContext{Documents: []types.ContextDocument{
		{Name: "alpha.csv", Content: "a,b\n1,2", Type: "csv"},
		{Name: "beta.pdf", Content: "some text", Type: "pdf"},
	}}

	resp := h.Respond("interesting", ac)

	assert.Nil(t, resp.Chart)
	assert.Contains(t, resp.Text, "alpha.csv")
	assert.Contains(t, resp.Text, "beta.pdf")
}

func testEngineConfig() *config.Config {
	return &config.Config{
		FetchTimeout:         time.Second,
		FetchMaxURLs:         5,
		FetchMaxContentChars: 50000,
		FetchCacheSize:       16,
		DocContextChars:      15000,
		DocWindowChars:       5000,
		HistoryWindow:        10,
		LLMRequestTimeout:    5 * time.Second,
		LLMModel:             "test-model",
	}
}
