package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoRowImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	img.Set(0, 0, red)
	img.Set(1, 0, red)
	img.Set(0, 1, blue)
	img.Set(1, 1, blue)
	return img
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, twoRowImage()))

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, twoRowImage(), nil))

	_, err := Decode(buf.Bytes())
	assert.NoError(t, err)
}

func TestDecodeRejectsOtherFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, twoRowImage(), nil))

	_, err := Decode(buf.Bytes())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode([]byte("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestToRGBAFlipY(t *testing.T) {
	rgba := ToRGBA(twoRowImage(), true, 0)

	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba.RGBAAt(0, 1))
}

func TestToRGBANoFlip(t *testing.T) {
	rgba := ToRGBA(twoRowImage(), false, 0)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba.RGBAAt(0, 0))
}

func TestToRGBADownscales(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	rgba := ToRGBA(img, false, 128)

	assert.Equal(t, 128, rgba.Bounds().Dx())
	assert.Equal(t, 32, rgba.Bounds().Dy())
}

func TestToRGBANormalizesOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 14, 12))
	rgba := ToRGBA(img, false, 0)
	assert.Equal(t, image.Rect(0, 0, 4, 2), rgba.Bounds())
}
