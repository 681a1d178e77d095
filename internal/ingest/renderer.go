package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"

	"github.com/gen2brain/go-fitz"

	"github.com/sems/integration-service/internal/common"
)

// PageImage is one rasterized document page, PNG-encoded.
type PageImage struct {
	Number int // 1-based page number
	PNG    []byte
	Width  int
	Height int
}

// Renderer turns raw document bytes into an ordered sequence of page images.
type Renderer interface {
	Render(ctx context.Context, document []byte) ([]PageImage, error)
}

// FitzRenderer rasterizes PDF pages with MuPDF via go-fitz.
type FitzRenderer struct {
	maxPages int
	logger   *slog.Logger
}

func NewFitzRenderer(maxPages int, logger *slog.Logger) *FitzRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FitzRenderer{maxPages: maxPages, logger: logger}
}

// Render decodes the document and rasterizes every page in document order.
// Any decode or rasterization failure is an ingest error.
func (r *FitzRenderer) Render(ctx context.Context, document []byte) ([]PageImage, error) {
	if len(document) == 0 {
		return nil, common.NewIngestError("document is empty", nil)
	}

	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		r.logger.Error("document decode failed", "bytes", len(document), "error", err)
		return nil, common.NewIngestError("failed to open document", err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			r.logger.Warn("document close failed", "error", err)
		}
	}()

	total := doc.NumPage()
	if total == 0 {
		return nil, common.NewIngestError("document has no pages", nil)
	}
	pages := total
	if r.maxPages > 0 && pages > r.maxPages {
		r.logger.Warn("document truncated", "pages", total, "max_pages", r.maxPages)
		pages = r.maxPages
	}

	images := make([]PageImage, 0, pages)
	for i := 0; i < pages; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.Image(i)
		if err != nil {
			return nil, common.NewIngestError(fmt.Sprintf("failed to render page %d", i+1), err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, common.NewIngestError(fmt.Sprintf("failed to encode page %d", i+1), err)
		}

		bounds := img.Bounds()
		images = append(images, PageImage{
			Number: i + 1,
			PNG:    buf.Bytes(),
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		})
	}

	r.logger.Debug("document rendered", "pages", len(images), "total_pages", total)
	return images, nil
}
