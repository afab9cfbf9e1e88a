package engine

import (
	"context"

	"go.uber.org/zap"

	"insight-agent/assembler"
	"insight-agent/charts"
	"insight-agent/config"
	"insight-agent/llmclient"
	"insight-agent/types"
)

// Response is what one analysis call produces: display text and an
// optional chart proposal.
type Response struct {
	Text  string                 `json:"text"`
	Chart *types.ChartSuggestion `json:"chart,omitempty"`
}

// Engine answers a user message against the assembled document and URL
// context. With model credentials present it calls the LLM; without them,
// or when the model call fails, it delegates to the deterministic
// heuristic responder. Callers never observe a hard failure.
type Engine struct {
	cfg       *config.Config
	client    *llmclient.Client
	assembler *assembler.Assembler
	heuristic *HeuristicResponder
	logger    *zap.Logger
}

func New(cfg *config.Config, client *llmclient.Client, asm *assembler.Assembler, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		client:    client,
		assembler: asm,
		heuristic: NewHeuristicResponder(asm, logger),
		logger:    logger,
	}
}

// GenerateResponse runs the full pipeline for one message. Model absence
// is an expected operating mode, not an error; a thrown model failure is
// logged and silently downgraded to the heuristic path.
func (e *Engine) GenerateResponse(ctx context.Context, userMessage string, ac types.AnalysisContext) Response {
	if !e.client.Configured() {
		e.logger.Debug("No model credentials configured, using heuristic responder")
		return e.heuristic.Respond(userMessage, ac)
	}

	systemPrompt := e.assembler.BuildSystemPrompt(ctx, userMessage, ac.Documents)

	messages := make([]types.AgentMessage, 0, e.cfg.HistoryWindow+2)
	messages = append(messages, types.AgentMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, e.assembler.TrimHistory(ac.PreviousMessages)...)
	messages = append(messages, types.AgentMessage{Role: "user", Content: userMessage})

	raw, err := e.client.Chat(ctx, messages)
	if err != nil {
		e.logger.Warn("Model call failed, falling back to heuristic responder", zap.Error(err))
		return e.heuristic.Respond(userMessage, ac)
	}

	text, chart := charts.ExtractSuggestion(raw, e.logger)
	return Response{Text: text, Chart: chart}
}
