package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultJPEGQuality is used for the stream and for image export.
const DefaultJPEGQuality = 80

// EncodeJPEG compresses img. The returned bytes are owned by the caller.
func EncodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	if img.Empty() {
		return nil, fmt.Errorf("encode jpeg: empty image")
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// ToRGBA converts a BGR image to an RGBA image for display toolkits.
func ToRGBA(img gocv.Mat) (*image.RGBA, error) {
	if img.Empty() {
		return nil, fmt.Errorf("convert image: empty image")
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(img, &rgba, gocv.ColorBGRToRGBA)

	data := rgba.ToBytes()
	out := image.NewRGBA(image.Rect(0, 0, rgba.Cols(), rgba.Rows()))
	copy(out.Pix, data)
	return out, nil
}
