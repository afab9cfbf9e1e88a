package assembler

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"insight-agent/config"
	"insight-agent/prompts"
	"insight-agent/types"
	"insight-agent/webcontent"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// Assembler builds the bounded textual context and trimmed message
// history for one analysis call. Per-document and per-URL character
// budgets are hard invariants, not heuristics.
type Assembler struct {
	cfg     *config.Config
	fetcher *webcontent.Fetcher
	logger  *zap.Logger
}

func New(cfg *config.Config, fetcher *webcontent.Fetcher, logger *zap.Logger) *Assembler {
	return &Assembler{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
	}
}

// DetectURLs extracts http(s) URLs from message text, strips trailing
// punctuation, de-duplicates, and caps the result at the configured
// maximum (first occurrences win).
func (a *Assembler) DetectURLs(message string) []string {
	matches := urlPattern.FindAllString(message, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, match := range matches {
		cleaned := strings.TrimRight(match, ".,;:!?)")
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		urls = append(urls, cleaned)
		if len(urls) >= a.cfg.FetchMaxURLs {
			break
		}
	}
	return urls
}

// BuildSystemPrompt assembles the fixed role template with document and
// URL context appended verbatim at the end.
func (a *Assembler) BuildSystemPrompt(ctx context.Context, userMessage string, docs []types.ContextDocument) string {
	var b strings.Builder
	b.WriteString(prompts.AnalystSystem())

	if docContext := a.DocumentContext(docs); docContext != "" {
		b.WriteString("\n\n")
		b.WriteString(docContext)
	}

	if urls := a.DetectURLs(userMessage); len(urls) > 0 {
		if urlContext := a.URLContext(ctx, urls); urlContext != "" {
			b.WriteString("\n\n")
			b.WriteString(urlContext)
		}
	}

	return b.String()
}

// DocumentContext formats attached documents within the per-document
// character budget. Documents over the budget contribute three labeled
// windows (beginning, middle, end) instead of a head truncation, so
// conclusions and mid-document tables survive.
func (a *Assembler) DocumentContext(docs []types.ContextDocument) string {
	if len(docs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("### Attached documents\n")
	for _, doc := range docs {
		b.WriteString(fmt.Sprintf("\n--- Document: %s (%s, %d characters) ---\n",
			doc.Name, doc.Type, len(doc.Content)))
		b.WriteString(a.boundedContent(doc.Content))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *Assembler) boundedContent(content string) string {
	budget := a.cfg.DocContextChars
	window := a.cfg.DocWindowChars
	if len(content) <= budget {
		return content
	}

	mid := len(content) / 2
	middleStart := mid - window/2

	var b strings.Builder
	b.WriteString("[BEGINNING OF DOCUMENT]\n")
	b.WriteString(content[:window])
	b.WriteString("\n\n[MIDDLE OF DOCUMENT]\n")
	b.WriteString(content[middleStart : middleStart+window])
	b.WriteString("\n\n[END OF DOCUMENT]\n")
	b.WriteString(content[len(content)-window:])
	return b.String()
}

// URLContext fetches the detected URLs concurrently and formats only the
// successful ones. Failures are logged and silently omitted from model
// context.
func (a *Assembler) URLContext(ctx context.Context, urls []string) string {
	results := a.fetcher.FetchAll(ctx, urls)

	var b strings.Builder
	for _, result := range results {
		if !result.Success {
			a.logger.Warn("Omitting failed URL from context",
				zap.String("url", result.URL),
				zap.String("error", result.Error))
			continue
		}
		if b.Len() == 0 {
			b.WriteString("### Linked web content\n")
		}
		b.WriteString(fmt.Sprintf("\n--- %s (%s) ---\n", result.Title, result.URL))
		if result.Description != "" {
			b.WriteString(result.Description)
			b.WriteString("\n\n")
		}
		b.WriteString(result.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// TrimHistory returns at most the last HistoryWindow messages in
// chronological order. Callers may pass history newest-first; the
// assembler owns the final ordering the model expects.
func (a *Assembler) TrimHistory(history []types.HistoryMessage) []types.AgentMessage {
	ordered := make([]types.HistoryMessage, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	if window := a.cfg.HistoryWindow; len(ordered) > window {
		ordered = ordered[len(ordered)-window:]
	}

	messages := make([]types.AgentMessage, 0, len(ordered))
	for _, msg := range ordered {
		messages = append(messages, types.AgentMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return messages
}
