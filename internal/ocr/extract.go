package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sems/integration-service/internal/common"
	"github.com/sems/integration-service/internal/ingest"
)

// TextExtractor converts rendered pages into a single ordered text blob.
type TextExtractor struct {
	engine Engine
	logger *slog.Logger
}

func NewTextExtractor(engine Engine, logger *slog.Logger) *TextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextExtractor{engine: engine, logger: logger}
}

// ExtractText recognizes every page in order and concatenates the results.
// A single page's failure aborts the whole extraction; there is no
// partial-result mode.
func (t *TextExtractor) ExtractText(ctx context.Context, pages []ingest.PageImage) (string, error) {
	start := time.Now()

	var b strings.Builder
	for _, page := range pages {
		text, err := t.engine.Recognize(ctx, page.PNG)
		if err != nil {
			t.logger.Error("ocr.page.failed", "page", page.Number, "error", err)
			return "", common.NewOCRError(fmt.Sprintf("recognition failed on page %d", page.Number), err)
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(text)
	}

	t.logger.Debug("ocr.done",
		"pages", len(pages),
		"bytes", b.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return b.String(), nil
}
