// Package imageutil provides image decoding, resizing and encoding helpers
// shared by the media proxy and upload pipeline.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Decode decodes raw image bytes. WebP needs an explicit decoder, everything
// else goes through the registered stdlib formats.
func Decode(data []byte, contentType string) (image.Image, error) {
	reader := bytes.NewReader(data)

	if contentType == "image/webp" {
		return webp.Decode(reader)
	}

	img, _, err := image.Decode(reader)
	return img, err
}

// Resize scales an image according to a size expression while preserving
// aspect ratio. Accepted forms: "256x-" (width only), "-x256" (height only),
// "256x256" (fit both). Images are never upscaled. Invalid expressions return
// the image unchanged.
func Resize(img image.Image, sizeStr string) image.Image {
	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()

	parts := strings.Split(sizeStr, "x")
	if len(parts) != 2 {
		return img
	}

	var targetWidth, targetHeight int

	if parts[0] != "" && parts[0] != "-" {
		if w, err := strconv.Atoi(parts[0]); err == nil && w > 0 {
			targetWidth = w
		}
	}
	if parts[1] != "" && parts[1] != "-" {
		if h, err := strconv.Atoi(parts[1]); err == nil && h > 0 {
			targetHeight = h
		}
	}

	if targetWidth > 0 && targetHeight == 0 {
		targetHeight = origHeight * targetWidth / origWidth
	} else if targetHeight > 0 && targetWidth == 0 {
		targetWidth = origWidth * targetHeight / origHeight
	} else if targetWidth == 0 && targetHeight == 0 {
		return img
	}

	if targetWidth > origWidth {
		targetWidth = origWidth
		targetHeight = origHeight * targetWidth / origWidth
	}
	if targetHeight > origHeight {
		targetHeight = origHeight
		targetWidth = origWidth * targetHeight / origHeight
	}

	if targetWidth <= 0 || targetHeight <= 0 {
		return img
	}

	resized := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	return resized
}

// SquareThumbnail center-crops an image to a square and scales it to size.
func SquareThumbnail(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var cropRect image.Rectangle
	switch {
	case width > height:
		offset := (width - height) / 2
		cropRect = image.Rect(offset, 0, offset+height, height)
	case height > width:
		offset := (height - width) / 2
		cropRect = image.Rect(0, offset, width, offset+width)
	default:
		cropRect = bounds
	}

	croppedSize := cropRect.Dx()
	cropped := image.NewRGBA(image.Rect(0, 0, croppedSize, croppedSize))
	draw.Copy(cropped, image.Point{}, img, cropRect, draw.Src, nil)

	resized := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(resized, resized.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	return resized
}

// Encode serializes an image in the requested format and returns the bytes
// together with the content type. There is no pure Go WebP encoder, so webp
// output falls back to JPEG.
func Encode(img image.Image, format string, quality int) ([]byte, string, error) {
	if quality < 1 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer

	switch strings.ToLower(format) {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil

	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/gif", nil

	case "jpg", "jpeg", "webp", "":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil

	default:
		return nil, "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func init() {
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
