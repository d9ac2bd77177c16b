package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// ExportResult describes an image written by Export.
type ExportResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Export writes an 8-bit copy of g in the format implied by the extension of
// path: ".png", ".jpg"/".jpeg", ".gif", ".tif"/".tiff" or ".bmp".
//
// A scale other than 1.0 resizes the copy with a Lanczos filter first; the
// scaled dimensions are truncated and never drop below one pixel. Scales of
// zero or less are ignored.
func Export(g *Grid, path string, scale float64) (*ExportResult, error) {
	var img image.Image = g.Image()

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(g.Width)*scale))
		newHeight := max(1, int(float64(g.Height)*scale))
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	if err := SaveImage(img, path); err != nil {
		return nil, err
	}

	return &ExportResult{
		Path:   path,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

// SaveImage writes img to path, choosing the encoder from the extension.
func SaveImage(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return &ConfigError{Field: "export", Reason: "unsupported image format for " + path}
	}
	if err := imaging.Save(img, path); err != nil {
		return &IoError{Op: "export", Path: path, Err: err}
	}
	return nil
}
