// Package frame defines the owned-bitmap contract shared by the capture
// sources, the history buffer, and the compositor.
//
// Bitmaps are explicitly released: whoever holds a Bitmap owns its backing
// storage and must call Close exactly once when done. Sources backed by
// native memory (gocv Mats) leak without this, so the contract is enforced
// even for plain in-memory bitmaps.
package frame

import (
	"errors"
	"image"
	"image/draw"
)

// ErrClosed is returned when a bitmap is used after Close.
var ErrClosed = errors.New("frame: bitmap is closed")

// Bitmap is an owned rectangular pixel region.
type Bitmap interface {
	// Image returns the pixel data. The returned image is only valid until
	// Close is called.
	Image() *image.RGBA

	// Bounds returns the pixel dimensions.
	Bounds() image.Rectangle

	// Close releases the backing storage. Close is idempotent.
	Close() error
}

// Frame is a single captured video frame. Crop copies the region out into
// a new owned Bitmap, so the frame itself can be released independently of
// any crops taken from it.
type Frame interface {
	Bitmap
	Crop(r image.Rectangle) (Bitmap, error)
}

// Image wraps an image.RGBA as an owned Frame. It is the in-memory
// implementation used by the simulator, the WebRTC decoder, and tests.
type Image struct {
	img    *image.RGBA
	closed bool
}

// NewImage creates a Frame backed by the given image. The Frame takes
// ownership of img.
func NewImage(img *image.RGBA) *Image {
	return &Image{img: img}
}

// FromImage copies any image.Image into an owned Frame.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return NewImage(dst)
}

// Image returns the pixel data.
func (f *Image) Image() *image.RGBA {
	if f.closed {
		return nil
	}
	return f.img
}

// Bounds returns the pixel dimensions.
func (f *Image) Bounds() image.Rectangle {
	if f.closed {
		return image.Rectangle{}
	}
	return f.img.Bounds()
}

// Crop copies the region into a new owned Bitmap.
func (f *Image) Crop(r image.Rectangle) (Bitmap, error) {
	if f.closed {
		return nil, ErrClosed
	}
	r = r.Intersect(f.img.Bounds())
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, errors.New("frame: empty crop region")
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), f.img, r.Min, draw.Src)
	return NewImage(dst), nil
}

// Close releases the pixel data.
func (f *Image) Close() error {
	f.closed = true
	f.img = nil
	return nil
}
