package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

type stubRunner struct {
	mu     sync.Mutex
	calls  [][]string
	handle func(name string, args []string) ([]byte, []byte, error)
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string{name}, args...))
	s.mu.Unlock()
	if s.handle == nil {
		return nil, nil, errors.New("unexpected call to " + name)
	}
	return s.handle(name, args)
}

func (s *stubRunner) called(name string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out [][]string
	for _, c := range s.calls {
		if c[0] == name {
			out = append(out, c[1:])
		}
	}
	return out
}

func textLayer(text string, err error) PageTextReader {
	return func(string) (string, int, error) { return text, 1, err }
}

func writePage(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	for x := 0; x < 20; x++ {
		for y := 0; y < 10; y++ {
			v := uint8(200)
			if x < 10 {
				v = 40
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	require.NoError(t, imaging.Save(img, path))
}

// renderingRunner fakes pdftoppm by writing n pages and tesseract by echoing the page file name.
func renderingRunner(t *testing.T, pages int, layout string) *stubRunner {
	return &stubRunner{handle: func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftotext":
			return []byte(layout), nil, nil
		case "pdftoppm":
			prefix := args[len(args)-1]
			for i := 1; i <= pages; i++ {
				writePage(t, prefix+"-"+string(rune('0'+i))+".png")
			}
			return nil, nil, nil
		case "tesseract":
			return []byte("ocr " + filepath.Base(args[0])), nil, nil
		}
		return nil, nil, errors.New("unknown tool")
	}}
}

func newTestExtractor(r Runner, tl PageTextReader) *Extractor {
	return NewExtractor(Config{}, nil, WithRunner(r), WithPageTextReader(tl))
}

func TestExtract_TextLayerAccepted(t *testing.T) {
	r := &stubRunner{}
	e := newTestExtractor(r, textLayer(strings.Repeat("Academic Calendar ", 10), nil))

	res, err := e.Extract(context.Background(), "calendar.pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodTextLayer, res.Method)
	assert.True(t, strings.HasPrefix(res.Text, "Academic Calendar"))
	assert.Empty(t, r.calls, "no external tool runs when the text layer suffices")
}

func TestExtract_LayoutAppendedToTextLayer(t *testing.T) {
	r := renderingRunner(t, 1, "Semester starts 2 June 2025 and ends in August")
	e := newTestExtractor(r, textLayer("Calendar", nil))

	res, err := e.Extract(context.Background(), "calendar.pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodLayout, res.Method)
	assert.Equal(t, "CalendarSemester starts 2 June 2025 and ends in August", res.Text)
	assert.Empty(t, r.called("pdftoppm"))
}

func TestExtract_FallsBackToOCRWhenTextTooShort(t *testing.T) {
	r := renderingRunner(t, 2, "tiny")
	e := newTestExtractor(r, textLayer("", nil))

	res, err := e.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodPDFOCR, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "ocr bin-001.png\nocr bin-002.png", res.Text)

	tess := r.called("tesseract")
	require.Len(t, tess, 2)
	assert.Equal(t, "bin-001.png", filepath.Base(tess[0][0]), "pages are binarized before OCR")
	assert.Equal(t, []string{"stdout", "-l", "eng"}, tess[0][1:4])
}

func TestExtract_TextLayerErrorSkipsLayoutTier(t *testing.T) {
	r := renderingRunner(t, 1, "never used")
	e := newTestExtractor(r, textLayer("", errors.New("malformed xref")))

	res, err := e.Extract(context.Background(), "broken.pdf")
	require.NoError(t, err)
	assert.Equal(t, MethodPDFOCR, res.Method)
	assert.Empty(t, r.called("pdftotext"))
	assert.Contains(t, res.Warnings[0], "malformed xref")
}

func TestExtract_OCRFailureYieldsEmptyText(t *testing.T) {
	r := &stubRunner{handle: func(name string, args []string) ([]byte, []byte, error) {
		if name == "pdftotext" {
			return nil, []byte("Syntax Error"), errors.New("exit status 1")
		}
		return nil, []byte("render failed"), errors.New("exit status 99")
	}}
	e := newTestExtractor(r, textLayer("", nil))

	res, err := e.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.NotEmpty(t, res.Warnings)
	assert.Zero(t, res.Confidence)
}

func TestExtract_ImageGoesStraightToOCR(t *testing.T) {
	r := &stubRunner{handle: func(name string, args []string) ([]byte, []byte, error) {
		require.Equal(t, "tesseract", name)
		return []byte("Monday\t 9:00   Physics\r\n-----\n"), nil, nil
	}}
	e := newTestExtractor(r, textLayer("", errors.New("must not be called")))

	res, err := e.Extract(context.Background(), "timetable.JPG")
	require.NoError(t, err)
	assert.Equal(t, MethodImageOCR, res.Method)
	assert.Equal(t, "Monday 9:00 Physics", res.Text)
	assert.Equal(t, "timetable.JPG", r.called("tesseract")[0][0])
}

func TestExtract_ImageOCRFailureIsNotAnError(t *testing.T) {
	r := &stubRunner{handle: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Error opening data file"), errors.New("exit status 1")
	}}
	e := newTestExtractor(r, nil)

	res, err := e.Extract(context.Background(), "timetable.png")
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Len(t, res.Warnings, 1)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	e := newTestExtractor(&stubRunner{}, nil)
	_, err := e.Extract(context.Background(), "notes.docx")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestDiagnose(t *testing.T) {
	r := renderingRunner(t, 1, strings.Repeat("layout ", 10))
	e := newTestExtractor(r, textLayer("cal", nil))

	rep, err := e.Diagnose(context.Background(), "calendar.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, rep.TextLayerChars)
	assert.Equal(t, 69, rep.LayoutChars)
	assert.Equal(t, len("ocr bin-001.png"), rep.OCRChars)
	assert.Equal(t, MethodLayout, rep.SelectedMethod)

	_, err = e.Diagnose(context.Background(), "timetable.png")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestBinarize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.png")
	writePage(t, src)

	require.NoError(t, Binarize(src, dst))
	_, err := os.Stat(dst)
	require.NoError(t, err)

	out, err := imaging.Open(dst)
	require.NoError(t, err)
	r0, _, _, _ := out.At(0, 0).RGBA()
	r1, _, _, _ := out.At(19, 0).RGBA()
	assert.Zero(t, r0, "dark half becomes black")
	assert.Equal(t, uint32(0xffff), r1, "light half becomes white")
}

func TestOtsuThreshold(t *testing.T) {
	var hist [256]int
	hist[40] = 100
	hist[200] = 100
	th := otsuThreshold(hist, 200)
	assert.GreaterOrEqual(t, th, uint8(40))
	assert.Less(t, th, uint8(200))

	assert.Zero(t, otsuThreshold([256]int{}, 0))
}

func TestNormalize(t *testing.T) {
	in := "Academic  Instruction\tDuration\r\n\n\n\n02 June 2025   \f(Monday)  "
	assert.Equal(t, "Academic Instruction Duration\n\n02 June 2025\n(Monday)", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}
