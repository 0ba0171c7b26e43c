package services

import (
	"bytes"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

const msgNotAnImage = "Only image uploads are allowed"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/avif": true,
}

// Upload is a file received from a form field.
type Upload struct {
	Filename string
	Data     []byte
}

func (u *Upload) Present() bool {
	return u != nil && len(u.Data) > 0
}

// PreparedImage is an upload that passed sniffing and, if it was too large, was downscaled.
type PreparedImage struct {
	Data        []byte
	ContentType string
	Ext         string
}

type ImageProcessor struct {
	MaxDim int
}

// Prepare sniffs the payload, rejects anything but raster images and shrinks
// JPEG/PNG images whose longer side exceeds MaxDim.
func (p ImageProcessor) Prepare(up Upload) (PreparedImage, error) {
	if len(up.Data) == 0 {
		return PreparedImage{}, ErrBadRequest("Image file is empty")
	}
	mt := mimetype.Detect(up.Data)
	contentType := strings.ToLower(strings.SplitN(mt.String(), ";", 2)[0])
	if !allowedImageTypes[contentType] {
		return PreparedImage{}, ErrBadRequest(msgNotAnImage)
	}
	out := PreparedImage{
		Data:        up.Data,
		ContentType: contentType,
		Ext:         strings.TrimPrefix(mt.Extension(), "."),
	}

	var format imaging.Format
	switch contentType {
	case "image/jpeg":
		format = imaging.JPEG
	case "image/png":
		format = imaging.PNG
	default:
		return out, nil
	}
	if p.MaxDim <= 0 {
		return out, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(up.Data))
	if err != nil {
		return PreparedImage{}, ErrBadRequest("Image could not be decoded")
	}
	if cfg.Width <= p.MaxDim && cfg.Height <= p.MaxDim {
		return out, nil
	}
	img, err := imaging.Decode(bytes.NewReader(up.Data), imaging.AutoOrientation(true))
	if err != nil {
		return PreparedImage{}, ErrBadRequest("Image could not be decoded")
	}
	resized := imaging.Fit(img, p.MaxDim, p.MaxDim, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return PreparedImage{}, WrapError(err, "encode image")
	}
	out.Data = buf.Bytes()
	return out, nil
}
