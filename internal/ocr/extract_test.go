package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/sems/integration-service/internal/common"
	"github.com/sems/integration-service/internal/ingest"
)

// scriptedEngine returns canned text per call and fails on a chosen page.
type scriptedEngine struct {
	texts    []string
	failCall int // 1-based call number that fails; 0 = never
	calls    int
}

func (e *scriptedEngine) Recognize(_ context.Context, _ []byte) (string, error) {
	e.calls++
	if e.failCall != 0 && e.calls == e.failCall {
		return "", errors.New("engine crashed")
	}
	return e.texts[e.calls-1], nil
}

func pages(n int) []ingest.PageImage {
	out := make([]ingest.PageImage, n)
	for i := range out {
		out[i] = ingest.PageImage{Number: i + 1, PNG: []byte{byte(i)}}
	}
	return out
}

func TestExtractTextJoinsPagesInOrder(t *testing.T) {
	engine := &scriptedEngine{texts: []string{"first page", "second page", "third page"}}
	ext := NewTextExtractor(engine, nil)

	text, err := ext.ExtractText(context.Background(), pages(3))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	want := "first page\n\f\nsecond page\n\f\nthird page"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestExtractTextNoPages(t *testing.T) {
	ext := NewTextExtractor(&scriptedEngine{}, nil)

	text, err := ext.ExtractText(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestExtractTextAbortsOnPageFailure(t *testing.T) {
	engine := &scriptedEngine{texts: []string{"one", "two", "three"}, failCall: 2}
	ext := NewTextExtractor(engine, nil)

	_, err := ext.ExtractText(context.Background(), pages(3))
	if !errors.Is(err, common.ErrOCR) {
		t.Fatalf("err = %v, want OCR error", err)
	}
	// No partial-result mode: page 3 is never attempted.
	if engine.calls != 2 {
		t.Errorf("engine called %d times, want 2", engine.calls)
	}
}
