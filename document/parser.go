package document

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"insight-agent/types"
)

// PDFExtractionFailed is the placeholder content used when a PDF yields no
// readable text. Upload must never fail because a PDF was unparsable.
const PDFExtractionFailed = "PDF content extraction failed. The document has been stored and can be referenced by name, but its text is not available for analysis."

const previewRows = 10

// Parser converts uploaded files into normalized documents. It never
// returns an error to its caller: every failure path degrades to
// best-effort placeholder content so upload is never blocked.
type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads the file and dispatches on its extension. The switch is
// closed: every known format has a case and everything else is read as
// plain text.
func (p *Parser) Parse(filePath, mimeType string) types.ParsedDocument {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".csv":
		return p.parseCSV(filePath)
	case ".json":
		return p.parseJSON(filePath)
	case ".pdf":
		return p.parsePDF(filePath)
	default:
		return p.parseText(filePath)
	}
}

func (p *Parser) parseCSV(filePath string) types.ParsedDocument {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return p.unreadable(filePath, "csv", err)
	}
	content := string(raw)

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil || len(records) == 0 {
		// Raw content is still useful context even when the CSV
		// structure cannot be recovered.
		p.logger.Warn("CSV parse failed, falling back to raw content",
			zap.String("path", filePath),
			zap.Error(err))
		return types.ParsedDocument{
			Content:  content,
			Metadata: types.DocumentMetadata{Type: "csv"},
		}
	}

	headers := records[0]
	rows := records[1:]

	preview := make([]any, 0, previewRows)
	for i, row := range rows {
		if i >= previewRows {
			break
		}
		entry := make(map[string]any, len(headers))
		for j, header := range headers {
			if j < len(row) {
				entry[header] = row[j]
			}
		}
		preview = append(preview, entry)
	}

	return types.ParsedDocument{
		Content: content,
		Metadata: types.DocumentMetadata{
			Type:     "csv",
			Headers:  headers,
			RowCount: len(rows),
			Columns:  len(headers),
			Preview:  preview,
		},
	}
}

func (p *Parser) parseJSON(filePath string) types.ParsedDocument {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return p.unreadable(filePath, "json", err)
	}
	content := string(raw)

	var arr []any
	if err := json.Unmarshal(raw, &arr); err == nil {
		preview := arr
		if len(preview) > previewRows {
			preview = preview[:previewRows]
		}
		return types.ParsedDocument{
			Content: content,
			Metadata: types.DocumentMetadata{
				Type:     "json",
				RowCount: len(arr),
				Preview:  preview,
			},
		}
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return types.ParsedDocument{
			Content: content,
			Metadata: types.DocumentMetadata{
				Type:     "json",
				RowCount: 1,
				Preview:  []any{obj},
			},
		}
	}

	p.logger.Warn("JSON parse failed, falling back to raw content",
		zap.String("path", filePath))
	return types.ParsedDocument{
		Content:  content,
		Metadata: types.DocumentMetadata{Type: "json"},
	}
}

func (p *Parser) parsePDF(filePath string) types.ParsedDocument {
	text, pageCount, err := p.extractPDFText(filePath)
	if err != nil || strings.TrimSpace(text) == "" {
		p.logger.Warn("PDF extraction failed, using placeholder content",
			zap.String("path", filePath),
			zap.Error(err))
		return types.ParsedDocument{
			Content:  PDFExtractionFailed,
			Metadata: types.DocumentMetadata{Type: "pdf"},
		}
	}

	return types.ParsedDocument{
		Content: text,
		Metadata: types.DocumentMetadata{
			Type:     "pdf",
			RowCount: pageCount,
		},
	}
}

// extractPDFText pulls plain text page by page. The pdf library can panic
// on malformed files, so the whole extraction is recovered.
func (p *Parser) extractPDFText(filePath string) (text string, pageCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf extraction panicked: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var fullText strings.Builder
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			p.logger.Warn("Skipping null page", zap.Int("page", pageNum))
			continue
		}

		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			p.logger.Warn("Failed to extract text from page",
				zap.Int("page", pageNum),
				zap.Error(pageErr))
			continue
		}

		fullText.WriteString(fmt.Sprintf("--- Page %d ---\n", pageNum))
		fullText.WriteString(pageText)
		fullText.WriteString("\n\n")
	}

	return fullText.String(), totalPages, nil
}

func (p *Parser) parseText(filePath string) types.ParsedDocument {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return p.unreadable(filePath, "text", err)
	}
	content := string(raw)

	return types.ParsedDocument{
		Content: content,
		Metadata: types.DocumentMetadata{
			Type:     "text",
			RowCount: countLines(content),
		},
	}
}

func (p *Parser) unreadable(filePath, docType string, err error) types.ParsedDocument {
	p.logger.Warn("Could not read uploaded file",
		zap.String("path", filePath),
		zap.String("type", docType),
		zap.Error(err))
	return types.ParsedDocument{
		Content:  fmt.Sprintf("Unable to read file %s.", filepath.Base(filePath)),
		Metadata: types.DocumentMetadata{Type: docType},
	}
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Split(strings.TrimRight(content, "\n"), "\n"))
}
