package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pdfToOCR renders every page, binarizes it and runs tesseract on it.
// It never fails: problems are reported as warnings next to whatever text was read.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string) {
	tmpDir, err := os.MkdirTemp("", "att-pp-*")
	if err != nil {
		return "", 0, []string{"create render dir: " + err.Error()}
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("ocr.pdf.cleanup_failed", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		e.logger.Error("ocr.pdf.render_failed", "path", path, "error", err)
		return "", 0, []string{"pdftoppm: " + strings.TrimSpace(string(errb))}
	}

	// collect generated pngs (page-1.png, page-2.png, ... zero padded past 9 pages)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}
	}

	var b strings.Builder
	for i, img := range matches {
		src := img
		bin := filepath.Join(tmpDir, fmt.Sprintf("bin-%03d.png", i+1))
		if err := Binarize(img, bin); err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d preprocess: %v", i+1, err))
		} else {
			src = bin
		}

		txt, err := e.tesseractOCR(ctx, src)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return b.String(), len(matches), warnings
}
