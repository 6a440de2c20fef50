package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/attendance-tracker/constants"
)

// extractImage OCRs an uploaded timetable photo or screenshot.
func (e *Extractor) extractImage(ctx context.Context, path string) ExtractionResult {
	res := ExtractionResult{
		Pages:      1,
		SourceType: constants.IMAGE,
		Method:     MethodImageOCR,
		Language:   e.cfg.TesseractLang,
	}
	if txt, err := e.tesseractOCR(ctx, path); err != nil {
		e.logger.Warn("ocr.image.failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, err.Error())
	} else {
		res.Text = txt
	}
	return res
}

// tesseractArgs builds `tesseract <img> stdout -l <lang> [--psm n] [--oem n] [--tessdata-dir d]`.
func (e *Extractor) tesseractArgs(img string) []string {
	args := make([]string, 0, 10)
	args = append(args, img, "stdout", "-l", e.cfg.TesseractLang)
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if dir := e.cfg.TessdataDir; dir != "" {
		args = append(args, "--tessdata-dir", dir)
	}
	return args
}

func (e *Extractor) tesseractOCR(ctx context.Context, img string) (string, error) {
	out, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, e.tesseractArgs(img)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(stderr)))
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
