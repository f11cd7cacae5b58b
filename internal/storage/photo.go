package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"
	"net/http"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const PhotoSize = 512

var ErrUnsupportedPhoto = errors.New("photo must be png, jpeg, or webp")

// ProcessPhoto center-crops raw to a square and scales it to PhotoSize, returning PNG bytes.
func ProcessPhoto(raw []byte) ([]byte, error) {
	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return nil, ErrUnsupportedPhoto
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		decoded, webpErr := webp.Decode(bytes.NewReader(raw))
		if webpErr != nil {
			return nil, fmt.Errorf("unable to decode photo: %w", err)
		}
		img = decoded
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid image dimensions")
	}

	side := min(width, height)
	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	origin := image.Point{X: bounds.Min.X + (width-side)/2, Y: bounds.Min.Y + (height-side)/2}
	stddraw.Draw(cropped, cropRect, img, origin, stddraw.Src)

	resized := image.NewRGBA(image.Rect(0, 0, PhotoSize, PhotoSize))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), cropped, cropped.Bounds(), xdraw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, resized); err != nil {
		return nil, fmt.Errorf("unable to encode photo: %w", err)
	}
	return out.Bytes(), nil
}

func PhotoKey(farmID, workerID uint) string {
	return fmt.Sprintf("%d/%d/%s.png", farmID, workerID, uuid.NewString())
}
