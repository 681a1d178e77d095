package extract

import (
	"regexp"
	"strings"

	"github.com/sems/integration-service/internal/entity"
)

// lineItemPattern matches one tabular billing row: a 10-60 character
// description followed by an integer quantity and two decimal amounts with
// exactly two fraction digits. This is deliberately permissive pattern
// matching, not a layout-aware table parser; non-conforming layouts simply
// produce no rows.
var lineItemPattern = regexp.MustCompile(`(?m)^([A-Za-z0-9\s\-&.]{10,60})\s+(\d+)\s+(\d+[.,]\d{2})\s+(\d+[.,]\d{2})$`)

// ExtractLineItems collects billing rows in order of appearance. No matches
// yields an empty slice, never an error.
func ExtractLineItems(text string) []entity.LineItem {
	items := []entity.LineItem{}
	for _, m := range lineItemPattern.FindAllStringSubmatch(text, -1) {
		items = append(items, entity.LineItem{
			Description: strings.TrimSpace(m[1]),
			Quantity:    m[2],
			UnitPrice:   m[3],
			Total:       m[4],
		})
	}
	return items
}
