package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"insight-agent/config"
	"insight-agent/document"
	"insight-agent/utils"
)

type DocumentHandler struct {
	parser *document.Parser
	cfg    *config.Config
	logger *zap.Logger
}

type DocumentResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	Metadata any    `json:"metadata"`
}

func NewDocumentHandler(parser *document.Parser, cfg *config.Config, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		parser: parser,
		cfg:    cfg,
		logger: logger,
	}
}

// Upload accepts a multipart file, parses it, and returns the normalized
// document. Parsing itself cannot fail; only validation and disk errors
// produce non-200 responses. Persistence is the caller's concern.
func (h *DocumentHandler) Upload(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uuid.UUID)

	file, err := c.FormFile("file")
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "No file provided")
		return
	}

	sanitized := utils.SanitizeFilename(file.Filename)
	if sanitized == "" {
		respondWithClientError(c, http.StatusBadRequest, "Invalid or unsafe filename")
		return
	}
	if !utils.AllowedUploadExtension(sanitized) {
		respondWithClientError(c, http.StatusBadRequest, "Unsupported file type. Upload CSV, JSON, PDF, or text files")
		return
	}
	if file.Size > h.cfg.MaxUploadSize {
		respondWithClientError(c, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	uploadDir := filepath.Join(h.cfg.UploadDir, sessionID.String())
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Could not store upload", h.logger)
		return
	}
	dst := filepath.Join(uploadDir, sanitized)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Could not store upload", h.logger,
			zap.String("filename", sanitized))
		return
	}

	parsed := h.parser.Parse(dst, file.Header.Get("Content-Type"))

	h.logger.Info("Document uploaded and parsed",
		zap.String("session_id", sessionID.String()),
		zap.String("filename", sanitized),
		zap.String("type", parsed.Metadata.Type),
		zap.Int64("size_bytes", file.Size))

	c.JSON(http.StatusOK, DocumentResponse{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(file.Filename),
		Content:  parsed.Content,
		Metadata: parsed.Metadata,
	})
}
