package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spherical/pdf-parser/internal/domain"
)

// ImageExtractor pulls embedded image XObjects out of a PDF with pdfcpu
type ImageExtractor struct {
	logger *domain.Logger
}

// NewImageExtractor creates a pdfcpu-backed image extractor
func NewImageExtractor(logger *domain.Logger) *ImageExtractor {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &ImageExtractor{logger: logger.WithPrefix("images")}
}

// ExtractImages returns every embedded image in page order. Within a page,
// images are ordered by object number and indexed from 1.
func (e *ImageExtractor) ExtractImages(ctx context.Context, pdfPath string) (images []domain.EmbeddedImage, err error) {
	// pdfcpu panics on some truncated files
	defer func() {
		if rec := recover(); rec != nil {
			images, err = nil, domain.ConversionError("PDF structure is malformed", fmt.Errorf("%v", rec))
		}
	}()

	content, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, domain.IOError("Failed to read PDF", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.Cmd = model.EXTRACTIMAGES
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), conf)
	if err != nil {
		return nil, domain.ConversionError("Failed to parse PDF structure", err)
	}

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageImages, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
		if err != nil {
			return nil, domain.ExtractionError(fmt.Sprintf("Failed to extract images of page %d", pageNr), err)
		}

		objNrs := make([]int, 0, len(pageImages))
		for objNr := range pageImages {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		index := 0
		for _, objNr := range objNrs {
			img := pageImages[objNr]
			if img.Reader == nil {
				e.logger.Debug("page %d image obj %d has no data, skipping", pageNr, objNr)
				continue
			}
			data, err := io.ReadAll(img.Reader)
			if err != nil {
				return nil, domain.ExtractionError(fmt.Sprintf("Failed to read image obj %d on page %d", objNr, pageNr), err)
			}
			if len(data) == 0 {
				continue
			}

			index++
			images = append(images, domain.EmbeddedImage{
				Page:  pageNr,
				Index: index,
				Ext:   imageExt(img.FileType),
				Data:  data,
			})
		}
	}

	e.logger.Debug("found %d embedded images in %d pages", len(images), pdfCtx.PageCount)
	return images, nil
}

// imageExt normalises a pdfcpu file type to an extension. Unknown types
// fall back to png, the format pdfcpu uses for decoded raster data.
func imageExt(fileType string) string {
	ext := strings.ToLower(strings.TrimPrefix(fileType, "."))
	switch ext {
	case "jpg", "jpeg":
		return "jpg"
	case "":
		return "png"
	default:
		return ext
	}
}
