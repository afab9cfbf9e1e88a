package assembler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"insight-agent/config"
	"insight-agent/types"
	"insight-agent/webcontent"
)

func testAssembler() *Assembler {
	cfg := &config.Config{
		FetchTimeout:         time.Second,
		FetchMaxURLs:         5,
		FetchMaxContentChars: 50000,
		FetchCacheSize:       16,
		DocContextChars:      15000,
		DocWindowChars:       5000,
		HistoryWindow:        10,
	}
	logger := zap.NewNop()
	return New(cfg, webcontent.NewFetcher(cfg, logger), logger)
}

func TestDetectURLs(t *testing.T) {
	a := testAssembler()

	urls := a.DetectURLs("see https://example.com/report. and also http://other.org/page, thanks")
	assert.Equal(t, []string{"https://example.com/report", "http://other.org/page"}, urls)
}

func TestDetectURLsDeduplicatesAndCaps(t *testing.T) {
	a := testAssembler()

	message := strings.Join([]string{
		"https://a.test/1",
		"https://a.test/1",
		"https://a.test/2",
		"https://a.test/3",
		"https://a.test/4",
		"https://a.test/5",
		"https://a.test/6",
	}, " ")
	urls := a.DetectURLs(message)

	assert.Len(t, urls, 5)
	assert.Equal(t, "https://a.test/1", urls[0])
	assert.NotContains(t, urls, "https://a.test/6")
}

func TestDetectURLsNoneInProse(t *testing.T) {
	a := testAssembler()
	assert.Empty(t, a.DetectURLs("no links here, just words"))
}

func TestDocumentContextSmallDocVerbatim(t *testing.T) {
	a := testAssembler()
	content := strings.Repeat("x", 14999)

	out := a.DocumentContext([]types.ContextDocument{{Name: "small.txt", Content: content, Type: "text"}})

	assert.Contains(t, out, content)
	assert.NotContains(t, out, "[BEGINNING OF DOCUMENT]")
	assert.Contains(t, out, "small.txt")
	assert.Contains(t, out, "14999 characters")
}

func TestDocumentContextLargeDocThreeWindows(t *testing.T) {
	a := testAssembler()
	// Distinct characters per region so the windows can be checked.
	content := strings.Repeat("A", 20000) + strings.Repeat("M", 20000) + strings.Repeat("Z", 20000)

	out := a.DocumentContext([]types.ContextDocument{{Name: "big.txt", Content: content, Type: "text"}})

	assert.Contains(t, out, "[BEGINNING OF DOCUMENT]")
	assert.Contains(t, out, "[MIDDLE OF DOCUMENT]")
	assert.Contains(t, out, "[END OF DOCUMENT]")
	assert.Contains(t, out, strings.Repeat("A", 5000))
	assert.Contains(t, out, strings.Repeat("M", 5000))
	assert.Contains(t, out, strings.Repeat("Z", 5000))

	// The included document body never exceeds the budget regardless of
	// original length.
	body := out[strings.Index(out, "[BEGINNING OF DOCUMENT]"):]
	nonLabel := len(body) - len("[BEGINNING OF DOCUMENT]") - len("[MIDDLE OF DOCUMENT]") - len("[END OF DOCUMENT]")
	assert.LessOrEqual(t, nonLabel, 15000+10) // windows plus joining newlines
}

func TestTrimHistoryWindowAndOrder(t *testing.T) {
	a := testAssembler()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var history []types.HistoryMessage
	// Newest-first input, 15 messages.
	for i := 14; i >= 0; i-- {
		history = append(history, types.HistoryMessage{
			Role:      "user",
			Content:   strings.Repeat("m", i+1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	trimmed := a.TrimHistory(history)

	require.Len(t, trimmed, 10)
	// Oldest of the window first, newest last.
	assert.Equal(t, strings.Repeat("m", 6), trimmed[0].Content)
	assert.Equal(t, strings.Repeat("m", 15), trimmed[9].Content)
}

func TestTrimHistoryStableWithoutTimestamps(t *testing.T) {
	a := testAssembler()

	history := []types.HistoryMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
	}
	trimmed := a.TrimHistory(history)

	require.Len(t, trimmed, 2)
	assert.Equal(t, "first", trimmed[0].Content)
	assert.Equal(t, "second", trimmed[1].Content)
}

func TestBuildSystemPromptIncludesTemplateAndDocs(t *testing.T) {
	a := testAssembler()

	prompt := a.BuildSystemPrompt(context.Background(),"what does the report say?", []types.ContextDocument{
		{Name: "report.txt", Content: "Revenue was flat.", Type: "text"},
	})

	assert.Contains(t, prompt, "```chart")
	assert.Contains(t, prompt, "Attached documents")
	assert.Contains(t, prompt, "Revenue was flat.")
}
