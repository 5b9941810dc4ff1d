// Package texture decodes texture images and prepares them for upload.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	"golang.org/x/image/draw"
)

// ErrUnsupportedFormat is returned for images that are not PNG or JPEG.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// Decode decodes PNG or JPEG data.
func Decode(data []byte) (image.Image, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	return img, nil
}

// ToRGBA converts img to tightly packed RGBA with its origin at (0,0).
// Images larger than maxSize on either side are scaled down to fit,
// preserving aspect ratio; maxSize <= 0 disables the limit. With flipY the
// rows are reversed so row 0 is the bottom of the image, matching GL
// texture coordinates.
func ToRGBA(img image.Image, flipY bool, maxSize int) *image.RGBA {
	src := img.Bounds()
	w, h := fit(src.Dx(), src.Dy(), maxSize)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	}

	if flipY {
		flipRows(dst)
	}
	return dst
}

func fit(w, h, maxSize int) (int, int) {
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return w, h
	}
	if w >= h {
		return maxSize, max(1, h*maxSize/w)
	}
	return max(1, w*maxSize/h), maxSize
}

func flipRows(img *image.RGBA) {
	h := img.Bounds().Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}
