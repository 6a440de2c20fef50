package ocr

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

// Extraction methods, one per tier of the PDF chain plus direct image OCR.
const (
	MethodTextLayer = "pdf-text"
	MethodLayout    = "pdf-layout"
	MethodPDFOCR    = "pdf-ocr"
	MethodImageOCR  = "image-ocr"
)

const (
	// MinTextLayerChars is the trimmed length at which the text layer alone is trusted.
	MinTextLayerChars = 100
	// MinCombinedChars is the trimmed length at which text layer plus layout text is trusted.
	MinCombinedChars = 50
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// ConfigFrom maps the application OCR settings onto an extractor Config.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Pdftotext:     c.Pdftotext,
		Pdftoppm:      c.Pdftoppm,
		Tesseract:     c.Tesseract,
		TesseractLang: c.Lang,
		DPI:           c.DPI,
		MaxPages:      c.MaxPages,
		TessdataDir:   c.TessdataDir,
	}
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE
	Method     string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// PageTextReader reads the embedded text layer of a PDF and reports its page count.
type PageTextReader func(path string) (text string, pages int, err error)

type Extractor struct {
	cfg       Config
	runner    Runner
	textLayer PageTextReader
	logger    *slog.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithRunner replaces the external command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithPageTextReader replaces the PDF text-layer reader.
func WithPageTextReader(fn PageTextReader) Option {
	return func(e *Extractor) { e.textLayer = fn }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, textLayer: readTextLayer, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract picks a strategy based on file extension. OCR failures never
// surface as errors: the result simply carries empty text and warnings.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext)

	var res ExtractionResult
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res = e.extractImage(ctx, path)
	default:
		e.logger.Error("ocr.extract.unsupported", "extension", ext)
		return ExtractionResult{}, common.InvalidInputf("unsupported file type %q", ext)
	}

	res.Text = Normalize(res.Text)
	res.Confidence = heuristicConfidence(res.Text)
	res.Duration = time.Since(start)
	e.logger.Info("ocr.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) ExtractionResult {
	res := ExtractionResult{SourceType: constants.PDF, Language: e.cfg.TesseractLang}

	text, pages, err := e.textLayer(path)
	if err != nil {
		e.logger.Warn("ocr.pdf.text_layer_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, "text layer: "+err.Error())
		return e.pdfOCRResult(ctx, path, res)
	}
	res.Pages = pages
	if len(strings.TrimSpace(text)) >= MinTextLayerChars {
		res.Text = text
		res.Method = MethodTextLayer
		return res
	}

	layout, layoutPages, warns, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		e.logger.Warn("ocr.pdf.layout_failed", "path", path, "error", err)
		return e.pdfOCRResult(ctx, path, res)
	}
	if res.Pages == 0 {
		res.Pages = layoutPages
	}
	combined := text + layout
	if len(strings.TrimSpace(combined)) >= MinCombinedChars {
		res.Text = combined
		res.Method = MethodLayout
		return res
	}

	e.logger.Info("ocr.pdf.text_insufficient", "path", path, "chars", len(strings.TrimSpace(combined)))
	return e.pdfOCRResult(ctx, path, res)
}

func (e *Extractor) pdfOCRResult(ctx context.Context, path string, res ExtractionResult) ExtractionResult {
	text, pages, warns := e.pdfToOCR(ctx, path)
	res.Text = text
	res.Method = MethodPDFOCR
	if pages > 0 {
		res.Pages = pages
	}
	res.Warnings = append(res.Warnings, warns...)
	return res
}
