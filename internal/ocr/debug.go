package ocr

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

// TierReport shows what every tier of the PDF chain produced for one file.
type TierReport struct {
	TextLayerChars int      `json:"text_layer_chars"`
	TextLayerError string   `json:"text_layer_error,omitempty"`
	LayoutChars    int      `json:"layout_chars"`
	LayoutError    string   `json:"layout_error,omitempty"`
	OCRChars       int      `json:"ocr_chars"`
	OCRWarnings    []string `json:"ocr_warnings,omitempty"`
	SelectedMethod string   `json:"selected_method"`
	Preview        string   `json:"preview"`
}

// Diagnose runs every tier regardless of the acceptance thresholds, then
// reports which one the regular chain would have picked.
func (e *Extractor) Diagnose(ctx context.Context, path string) (TierReport, error) {
	if constants.MapExtToFormat(filepath.Ext(path)) != constants.PDF {
		return TierReport{}, common.InvalidInput("Only PDF files are supported")
	}
	var rep TierReport

	text, _, err := e.textLayer(path)
	if err != nil {
		rep.TextLayerError = err.Error()
	}
	rep.TextLayerChars = len(strings.TrimSpace(text))

	layout, _, _, err := e.pdfToText(ctx, path)
	if err != nil {
		rep.LayoutError = err.Error()
	}
	rep.LayoutChars = len(strings.TrimSpace(layout))

	ocrText, _, warns := e.pdfToOCR(ctx, path)
	rep.OCRChars = len(strings.TrimSpace(ocrText))
	rep.OCRWarnings = warns

	selected := ocrText
	switch {
	case rep.TextLayerError == "" && rep.TextLayerChars >= MinTextLayerChars:
		rep.SelectedMethod = MethodTextLayer
		selected = text
	case rep.TextLayerError == "" && rep.LayoutError == "" &&
		len(strings.TrimSpace(text+layout)) >= MinCombinedChars:
		rep.SelectedMethod = MethodLayout
		selected = text + layout
	default:
		rep.SelectedMethod = MethodPDFOCR
	}
	rep.Preview = Preview(Normalize(selected), 500)
	return rep, nil
}

// Preview returns at most n runes of s.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
