/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"krishimitra/pkg/format"
)

// MaxImageSide is the longest edge sent to the assistant. Leaf photos from a
// phone are far larger than the model needs.
const MaxImageSide = 1280

// PrepareImage decodes a photo, scales it so its longest side fits maxSide
// and re-encodes it. PNG input stays PNG, everything else becomes JPEG.
func PrepareImage(r io.Reader, maxSide int) ([]byte, string, error) {
	src, kind, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if maxSide <= 0 {
		maxSide = MaxImageSide
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, "", fmt.Errorf("decode image: empty %dx%d", w, h)
	}

	img := src
	if w > maxSide || h > maxSide {
		tw, th := maxSide, maxSide
		if w >= h {
			th = h * maxSide / w
		} else {
			tw = w * maxSide / h
		}
		if tw < 1 {
			tw = 1
		}
		if th < 1 {
			th = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if kind == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), format.MimePNG, nil
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), format.MimeJPEG, nil
}
