package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Canonical field names produced by the default rule set.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldDate          = "date"
	FieldTotalAmount   = "total_amount"
	FieldCompanyName   = "company_name"
	FieldVendorTaxID   = "vendor_tax_id"
)

// FieldRule is one named extraction rule: a case-insensitive pattern with a
// single capture group holding the field value. Rules are evaluated in order;
// each rule writes its own field, and the first match within a rule wins.
type FieldRule struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Group   int    `json:"group,omitempty"` // capture group index, defaults to 1
}

// DefaultRules returns the compiled-in rule table for invoice documents.
func DefaultRules() []FieldRule {
	return []FieldRule{
		{
			Name:    FieldInvoiceNumber,
			Pattern: `(?i)invoice\s*(?:#|number|num)?\s*[:]?\s*([A-Z0-9-]+)`,
		},
		{
			Name:    FieldDate,
			Pattern: `(?i)(?:invoice|date)(?:\s*date)?(?:\s*[:#])?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{2,4})`,
		},
		{
			Name:    FieldTotalAmount,
			Pattern: `(?i)(?:total|amount|sum)(?:\s*due)?(?:\s*:)?\s*[$€£]?\s*(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2}))`,
		},
		{
			Name:    FieldCompanyName,
			Pattern: `(?i)(?:from|vendor|supplier|company)(?:\s*name)?(?:\s*:)?\s*([A-Za-z0-9\s.,&]+?)(?:\n|Inc\.|Ltd\.|LLC|Co\.|Corp\.|Corporation)`,
		},
		{
			Name:    FieldVendorTaxID,
			Pattern: `(?i)(?:tax\s*id|vat|ein|tin)(?:\s*:)?\s*((?:[A-Z]{2})?\d{2}[-\s]?\d{7,})`,
		},
	}
}

// rulesSchema constrains externally supplied rule files.
const rulesSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"name":    {"type": "string", "minLength": 1},
			"pattern": {"type": "string", "minLength": 1},
			"group":   {"type": "integer", "minimum": 1}
		},
		"required": ["name", "pattern"]
	}
}`

// LoadRules reads an ordered rule table from a JSON file. The file is
// validated against rulesSchema before decoding, so a malformed rule set is
// rejected with a descriptive error instead of silently misbehaving.
func LoadRules(path string) ([]FieldRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	schema, err := jsonschema.CompileString("rules.schema.json", rulesSchema)
	if err != nil {
		return nil, fmt.Errorf("compile rules schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var rules []FieldRule
	if err := dec.Decode(&rules); err != nil {
		return nil, fmt.Errorf("decode rules file: %w", err)
	}
	return rules, nil
}
