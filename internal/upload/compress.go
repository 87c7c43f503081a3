package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Compressed is the output of Compress.
type Compressed struct {
	Data    []byte
	Width   int
	Height  int
	Resized bool
}

// Compressible reports whether Compress can decode the content type.
func Compressible(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// MaxPixels caps the decoded size of an upload.
const MaxPixels = 40_000_000

// Compress decodes an image, scales it so the longer side is at most
// maxDimension, flattens transparency onto white and re-encodes as JPEG.
// Images above MaxPixels are refused before their pixels are decoded.
func Compress(data []byte, maxDimension, quality int) (Compressed, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Compressed{}, err
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Compressed{}, fmt.Errorf("image is %dx%d, above the %d pixel limit", cfg.Width, cfg.Height, MaxPixels)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Compressed{}, err
	}
	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	resized := w != b.Dx() || h != b.Dy()
	if resized {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return Compressed{}, err
	}
	return Compressed{Data: buf.Bytes(), Width: w, Height: h, Resized: resized}, nil
}

func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
