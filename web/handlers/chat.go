package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"insight-agent/engine"
	"insight-agent/types"
)

type ChatHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

type ChatRequest struct {
	Message   string                  `json:"message"`
	Documents []types.ContextDocument `json:"documents"`
	History   []types.HistoryMessage  `json:"history"`
}

type ChatResponse struct {
	ID        string                 `json:"id"`
	SessionID string                 `json:"session_id"`
	Text      string                 `json:"text"`
	Chart     *types.ChartSuggestion `json:"chart,omitempty"`
}

func NewChatHandler(eng *engine.Engine, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		engine: eng,
		logger: logger,
	}
}

// SendMessage runs the analysis pipeline for one chat message. The
// pipeline never hard-fails for well-formed input, so the only error
// responses here are request validation.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		respondWithClientError(c, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	sessionID := c.MustGet("sessionID").(uuid.UUID)

	result := h.engine.GenerateResponse(c.Request.Context(), req.Message, types.AnalysisContext{
		Documents:        req.Documents,
		PreviousMessages: req.History,
	})

	h.logger.Info("Chat message processed",
		zap.String("session_id", sessionID.String()),
		zap.Int("documents", len(req.Documents)),
		zap.Bool("chart", result.Chart != nil))

	c.JSON(http.StatusOK, ChatResponse{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Text:      result.Text,
		Chart:     result.Chart,
	})
}
