package charts

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"insight-agent/types"
)

// fencePattern matches a fenced chart block, non-greedy so
// surrounding text and later fences are left alone.
var fencePattern = regexp.MustCompile("(?s)```chart\\s*(.*?)```")

// ExtractSuggestion locates the first fenced chart block in text, parses
// it, and strips it from the displayed text. On any parse or validation
// failure the original text is returned unchanged with no chart; at most
// one suggestion is honored per response.
func ExtractSuggestion(text string, logger *zap.Logger) (string, *types.ChartSuggestion) {
	match := fencePattern.FindStringSubmatch(text)
	if match == nil {
		return text, nil
	}

	var suggestion types.ChartSuggestion
	if err := json.Unmarshal([]byte(match[1]), &suggestion); err != nil {
		logger.Warn("Chart block did not parse, keeping text unchanged", zap.Error(err))
		return text, nil
	}

	if !types.ValidChartType(suggestion.Type) {
		logger.Warn("Chart block has unrecognized type, dropping it",
			zap.String("type", suggestion.Type))
		return text, nil
	}
	if len(suggestion.Data) == 0 {
		logger.Warn("Chart block has no data rows, dropping it")
		return text, nil
	}

	cleaned := strings.TrimSpace(strings.Replace(text, match[0], "", 1))
	return cleaned, &suggestion
}
