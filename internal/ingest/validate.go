package ingest

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/sems/integration-service/internal/common"
)

// ValidateDocument checks upload bytes for PDF well-formedness before any
// record is created. Relaxed mode matches what real-world invoices need.
func ValidateDocument(document []byte) error {
	if len(document) == 0 {
		return common.NewIngestError("document is empty", nil)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(document), conf); err != nil {
		return common.NewIngestError("document is not a well-formed PDF", err)
	}
	return nil
}
