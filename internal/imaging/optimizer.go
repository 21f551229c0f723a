// Package imaging re-encodes extracted images in place, dropping metadata
// and applying the configured JPEG quality.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/spherical/pdf-parser/internal/domain"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Optimizer implements domain.ImageOptimizer
type Optimizer struct {
	quality       int
	stripMetadata bool
	logger        *domain.Logger
}

// NewOptimizer creates an optimizer. quality applies to JPEG output (1-100).
func NewOptimizer(quality int, stripMetadata bool, logger *domain.Logger) *Optimizer {
	if quality < 1 || quality > 100 {
		quality = 85
	}
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &Optimizer{
		quality:       quality,
		stripMetadata: stripMetadata,
		logger:        logger.WithPrefix("imaging"),
	}
}

// Optimize re-encodes imagePath in place. Decoding drops every ancillary
// chunk and EXIF segment, so the re-encoded file carries pixels only; a JPEG
// orientation tag is applied to the pixels first. The original is left
// untouched when any step fails.
func (o *Optimizer) Optimize(imagePath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return domain.IOError("Failed to read image", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.ConversionError(fmt.Sprintf("Failed to decode %s", filepath.Base(imagePath)), err)
	}

	if format != "jpeg" && !o.stripMetadata {
		return nil
	}

	// re-encoding drops EXIF, so the orientation has to move into the pixels
	if format == "jpeg" {
		if orientation := exifOrientation(data); orientation != 1 {
			o.logger.Debug("applying EXIF orientation %d to %s", orientation, filepath.Base(imagePath))
			img = orient(img, orientation)
		}
	}

	encode, err := o.encoder(format)
	if err != nil {
		return err
	}

	if err := writeAtomic(imagePath, func(w io.Writer) error { return encode(w, img) }); err != nil {
		return domain.IOError(fmt.Sprintf("Failed to rewrite %s", filepath.Base(imagePath)), err)
	}
	return nil
}

func (o *Optimizer) encoder(format string) (func(io.Writer, image.Image) error, error) {
	switch format {
	case "jpeg":
		opts := &jpeg.Options{Quality: o.quality}
		return func(w io.Writer, img image.Image) error { return jpeg.Encode(w, img, opts) }, nil
	case "png":
		enc := &png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode, nil
	case "tiff":
		opts := &tiff.Options{Compression: tiff.Deflate}
		return func(w io.Writer, img image.Image) error { return tiff.Encode(w, img, opts) }, nil
	case "bmp":
		return bmp.Encode, nil
	default:
		return nil, domain.ConversionError(fmt.Sprintf("Cannot re-encode %s images", format), nil)
	}
}

// writeAtomic writes through a temp file in the same directory and renames
// it over path.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".optimize-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}
	return os.Rename(tmpName, path)
}
