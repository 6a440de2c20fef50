package ocr

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Binarize converts the image at src to black and white using Otsu's
// threshold and writes it to dst. The output format follows dst's extension.
func Binarize(src, dst string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	if err := imaging.Save(binarizeImage(img), dst); err != nil {
		return fmt.Errorf("save %s: %w", dst, err)
	}
	return nil
}

func binarizeImage(img image.Image) *image.Gray {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var hist [256]int
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := 0; x < w; x++ {
			hist[row[x*4]]++
		}
	}
	t := otsuThreshold(hist, w*h)

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4] > t {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// otsuThreshold picks the level that maximizes between-class variance.
// Pixels strictly above the returned level are foreground.
func otsuThreshold(hist [256]int, total int) uint8 {
	if total == 0 {
		return 0
	}
	var sum float64
	for i, c := range hist {
		sum += float64(i * c)
	}

	var (
		sumB, wB, best float64
		threshold      int
	)
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}
