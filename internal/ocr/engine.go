package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Engine recognizes text in a single page image. Implementations need not be
// safe for concurrent use; callers serialize per extraction.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TesseractEngine implements Engine using the gosseract client.
type TesseractEngine struct {
	language      string
	dpi           int
	clientFactory func() *gosseract.Client
}

func NewTesseractEngine(language string, dpi int) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{
		language:      language,
		dpi:           dpi,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize runs Tesseract over one PNG-encoded page.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := e.clientFactory()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if e.dpi > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}
