package imageutil

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
)

var (
	ErrInvalidSize = errors.New("invalid target size")
	ErrEmptyImage  = errors.New("source image has zero size")
)

// ResizeImage scales src to dstW x dstH using bilinear interpolation.
func ResizeImage(src image.Image, dstW, dstH int) (*image.NRGBA, error) {
	if dstW <= 0 || dstH <= 0 {
		return nil, ErrInvalidSize
	}
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, ErrEmptyImage
	}

	// Normalize to NRGBA so channels have a predictable layout.
	s := image.NewNRGBA(image.Rect(0, 0, srcW, srcH))
	draw.Draw(s, s.Bounds(), src, sb.Min, draw.Src)
	if srcW == dstW && srcH == dstH {
		return s, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	sx := float64(srcW) / float64(dstW)
	sy := float64(srcH) / float64(dstH)

	at := func(x, y, c int) float64 {
		x = clampInt(x, 0, srcW-1)
		y = clampInt(y, 0, srcH-1)
		return float64(s.Pix[s.PixOffset(x, y)+c])
	}

	for j := 0; j < dstH; j++ {
		fy := (float64(j)+0.5)*sy - 0.5
		y0 := int(math.Floor(fy))
		wy := fy - float64(y0)
		for i := 0; i < dstW; i++ {
			fx := (float64(i)+0.5)*sx - 0.5
			x0 := int(math.Floor(fx))
			wx := fx - float64(x0)

			off := dst.PixOffset(i, j)
			for c := 0; c < 4; c++ {
				v := (1-wx)*(1-wy)*at(x0, y0, c) +
					wx*(1-wy)*at(x0+1, y0, c) +
					(1-wx)*wy*at(x0, y0+1, c) +
					wx*wy*at(x0+1, y0+1, c)
				dst.Pix[off+c] = uint8(math.Round(clamp(v, 0, 255)))
			}
		}
	}
	return dst, nil
}

// FitSquare scales src to fit inside a size x size square, keeping the
// aspect ratio and centering it on a transparent background.
func FitSquare(src image.Image, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}
	w, h := size, size
	if b.Dx() > b.Dy() {
		h = maxInt(1, int(math.Round(float64(size)*float64(b.Dy())/float64(b.Dx()))))
	} else if b.Dy() > b.Dx() {
		w = maxInt(1, int(math.Round(float64(size)*float64(b.Dx())/float64(b.Dy()))))
	}
	scaled, err := ResizeImage(src, w, h)
	if err != nil {
		return nil, err
	}
	if w == size && h == size {
		return scaled, nil
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	offset := image.Pt((size-w)/2, (size-h)/2)
	draw.Draw(canvas, scaled.Bounds().Add(offset), scaled, image.Point{}, draw.Src)
	return canvas, nil
}

// Thumbnail decodes PNG, JPEG or GIF bytes and returns a size x size PNG.
func Thumbnail(data []byte, size int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out, err := FitSquare(img, size)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
