package extract

import (
	"docex/internal/domain"
	"docex/internal/pattern"
)

// IsItemRow reports whether the line carries both an item code and an
// amount token.
func IsItemRow(line string) bool {
	return len(pattern.ItemCodeMatches(line)) > 0 && len(pattern.AmountTokenMatches(line)) > 0
}

// ExtractItems returns one LineItem per item row, in source order. The item
// code is the first code on the line and the amount is the last amount token;
// the description is the whole line.
func ExtractItems(lines []string) []domain.LineItem {
	items := []domain.LineItem{}
	for _, l := range lines {
		codes := pattern.ItemCodeMatches(l)
		if len(codes) == 0 {
			continue
		}
		amounts := pattern.AmountTokenMatches(l)
		if len(amounts) == 0 {
			continue
		}
		items = append(items, domain.LineItem{
			ItemCode:    codes[0],
			Description: l,
			Amount:      amounts[len(amounts)-1],
		})
	}
	return items
}
