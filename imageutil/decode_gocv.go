//go:build gocv

package imageutil

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Built with -tags gocv, OpenCV decodes whatever the Go registry does not
// recognize (JPEG 2000, PNM, OpenEXR and so on, depending on the OpenCV
// build).
func init() {
	fallbackDecoder = decodeOpenCV
}

// decodeOpenCV decodes data with OpenCV and converts the BGR(A) or gray
// Mat into straight-alpha RGBA.
func decodeOpenCV(data []byte) (image.Image, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return nil, err
	}
	if !mat.Empty() && mat.Type()&7 != gocv.MatTypeCV8U {
		// Deeper than 8 bits: let OpenCV reduce it to 8-bit BGR.
		mat.Close()
		mat, err = gocv.IMDecode(data, gocv.IMReadColor)
		if err != nil {
			return nil, err
		}
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("opencv could not decode data")
	}
	return matToImage(mat)
}

// matToImage copies an 8-bit Mat with 1, 3 or 4 channels into an image.
func matToImage(mat gocv.Mat) (*NRGBAImage, error) {
	channels := mat.Channels()
	if channels != 1 && channels != 3 && channels != 4 {
		return nil, fmt.Errorf("opencv: unsupported channel count %d", channels)
	}
	img := NewNRGBAImage(mat.Cols(), mat.Rows())
	for y := 0; y < mat.Rows(); y++ {
		for x := 0; x < mat.Cols(); x++ {
			i := img.PixOffset(x, y)
			switch channels {
			case 1:
				v := mat.GetUCharAt(y, x)
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
			case 3:
				v := mat.GetVecbAt(y, x)
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v[2], v[1], v[0], 255
			case 4:
				v := mat.GetVecbAt(y, x)
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v[2], v[1], v[0], v[3]
			}
		}
	}
	return img, nil
}
