package imageutil

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func TestResizeWidthOnlyKeepsAspectRatio(t *testing.T) {
	img := testImage(800, 400)

	resized := Resize(img, "200x-")

	assert.Equal(t, 200, resized.Bounds().Dx())
	assert.Equal(t, 100, resized.Bounds().Dy())
}

func TestResizeHeightOnlyKeepsAspectRatio(t *testing.T) {
	img := testImage(800, 400)

	resized := Resize(img, "-x100")

	assert.Equal(t, 200, resized.Bounds().Dx())
	assert.Equal(t, 100, resized.Bounds().Dy())
}

func TestResizeNeverUpscales(t *testing.T) {
	img := testImage(100, 50)

	resized := Resize(img, "400x-")

	assert.Equal(t, 100, resized.Bounds().Dx())
	assert.Equal(t, 50, resized.Bounds().Dy())
}

func TestResizeInvalidExpressionReturnsOriginal(t *testing.T) {
	img := testImage(100, 50)

	assert.Equal(t, img, Resize(img, "banana"))
	assert.Equal(t, img, Resize(img, "-x-"))
	assert.Equal(t, img, Resize(img, ""))
}

func TestSquareThumbnailCropsToSquare(t *testing.T) {
	img := testImage(640, 480)

	thumb := SquareThumbnail(img, 64)

	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 64, thumb.Bounds().Dy())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := testImage(32, 32)

	data, contentType, err := Encode(img, "png", 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	decoded, err := Decode(data, contentType)
	require.NoError(t, err)
	assert.Equal(t, 32, decoded.Bounds().Dx())
}

func TestEncodeWebpFallsBackToJpeg(t *testing.T) {
	img := testImage(16, 16)

	_, contentType, err := Encode(img, "webp", 85)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestEncodeUnknownFormat(t *testing.T) {
	img := testImage(16, 16)

	_, _, err := Encode(img, "tiff", 85)
	assert.Error(t, err)
}
