package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createInMemoryImage creates a solid-color RGBA image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createStepImage creates a grayscale image that is black left of splitX and
// white from splitX onward.
func createStepImage(width, height, splitX int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := splitX; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

// createRoadImage draws two bright lane markings on a dark road.
func createRoadImage(width, height int) *image.RGBA {
	img := createInMemoryImage(width, height, color.RGBA{40, 40, 40, 255})
	marking := color.RGBA{250, 250, 250, 255}
	for y := height / 2; y < height; y++ {
		t := float64(y-height/2) / float64(height/2)
		left := int(float64(width)*0.45 - t*float64(width)*0.35)
		right := int(float64(width)*0.55 + t*float64(width)*0.35)
		for dx := -3; dx <= 3; dx++ {
			if left+dx >= 0 && left+dx < width {
				img.Set(left+dx, y, marking)
			}
			if right+dx >= 0 && right+dx < width {
				img.Set(right+dx, y, marking)
			}
		}
	}
	return img
}

// writePNG encodes img to a file in a per-test temp directory.
func writePNG(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func countNonZero(img *image.Gray) int {
	n := 0
	for _, v := range img.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}
