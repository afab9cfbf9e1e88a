package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"insight-agent/charts"
	"insight-agent/types"
)

type ChartHandler struct {
	logger *zap.Logger
}

type ChartConfigRequest struct {
	Type    string           `json:"type"`
	Data    []map[string]any `json:"data"`
	Options charts.Options   `json:"options"`
}

func NewChartHandler(logger *zap.Logger) *ChartHandler {
	return &ChartHandler{logger: logger}
}

// GenerateConfig derives a render-ready chart config from tabular data.
// An absent or unknown type is inferred from the data.
func (h *ChartHandler) GenerateConfig(c *gin.Context) {
	var req ChartConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	chartType := req.Type
	if !types.ValidChartType(chartType) {
		chartType = charts.DetectType(req.Data)
	}

	c.JSON(http.StatusOK, charts.GenerateConfig(chartType, req.Data, req.Options))
}

// Sample returns the fixed illustrative dataset for a chart type.
func (h *ChartHandler) Sample(c *gin.Context) {
	chartType := c.Param("type")
	if !types.ValidChartType(chartType) {
		respondWithClientError(c, http.StatusBadRequest, "Unknown chart type")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type": chartType,
		"data": charts.SampleData(chartType),
	})
}
