package ocr

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// GrayscalePreprocessor converts frames to grayscale, upscales them and
// applies Otsu thresholding to sharpen small UI text before recognition.
type GrayscalePreprocessor struct {
	ScaleFactor float64
}

// NewGrayscalePreprocessor creates a preprocessor with a 2x upscale.
func NewGrayscalePreprocessor() *GrayscalePreprocessor {
	return &GrayscalePreprocessor{ScaleFactor: 2.0}
}

// Scale reports the upscale factor so recognized boxes can be mapped
// back to the original frame's coordinates.
func (p *GrayscalePreprocessor) Scale() float64 {
	return p.ScaleFactor
}

// Apply returns a PNG-encoded processed frame.
func (p *GrayscalePreprocessor) Apply(img []byte) ([]byte, error) {
	mat, err := gocv.IMDecode(img, gocv.IMReadColor)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("decoded empty frame")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(gray, &scaled, image.Point{}, p.ScaleFactor, p.ScaleFactor, gocv.InterpolationCubic)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(scaled, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
