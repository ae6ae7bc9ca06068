package monitor

import (
	"bytes"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"
)

// hashWidth is the downscale width applied before perceptual hashing.
const hashWidth = 256

// frameSkipper decides whether a frame is perceptually identical to the
// previous one, letting the cycle skip OCR entirely. Used only from the
// cycle goroutine, so it needs no locking.
type frameSkipper struct {
	maxDistance int
	last        *goimagehash.ImageHash
}

func newFrameSkipper(maxDistance int) *frameSkipper {
	return &frameSkipper{maxDistance: maxDistance}
}

// skip returns true when the frame's pHash is within maxDistance of the
// previous frame's. Decode or hash failures never cause a skip.
func (f *frameSkipper) skip(frame []byte) bool {
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return false
	}

	small := resize.Resize(hashWidth, 0, img, resize.Bilinear)
	hash, err := goimagehash.PerceptionHash(small)
	if err != nil {
		return false
	}

	if f.last == nil {
		f.last = hash
		return false
	}

	dist, err := f.last.Distance(hash)
	if err != nil {
		f.last = hash
		return false
	}
	if dist <= f.maxDistance {
		return true
	}
	f.last = hash
	return false
}
