package services

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ItemCount is the fixed number of SNOT-22 questionnaire items.
const ItemCount = 22

// itemColumn is the header of the prompt column in the items file.
const itemColumn = "item_es"

// LoadItems reads the questionnaire prompts from a CSV file with an
// "item_es" column. It never returns an empty list: on any failure it
// returns the placeholder prompts together with the error, so a form can
// still render while the operator is alerted. Callers are expected to load
// once at startup and inject the result.
func LoadItems(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return PlaceholderItems(), NewItemConfigError(fmt.Sprintf("open %s: %v", path, err))
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return PlaceholderItems(), NewItemConfigError(fmt.Sprintf("parse %s: %v", path, err))
	}
	if len(rows) == 0 {
		return PlaceholderItems(), NewItemConfigError(fmt.Sprintf("%s is empty", path))
	}
	col := -1
	for i, name := range rows[0] {
		if name == itemColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return PlaceholderItems(), NewItemConfigError(fmt.Sprintf("%s: column %q not found", path, itemColumn))
	}
	items := make([]string, 0, ItemCount)
	for _, row := range rows[1:] {
		if col < len(row) {
			items = append(items, row[col])
		}
	}
	if len(items) != ItemCount {
		return PlaceholderItems(), NewItemConfigError(fmt.Sprintf("%s must have %d rows, got %d", path, ItemCount, len(items)))
	}
	return items, nil
}

// PlaceholderItems returns the deterministic "Item 1".."Item 22" fallback.
func PlaceholderItems() []string {
	items := make([]string, ItemCount)
	for i := range items {
		items[i] = fmt.Sprintf("Item %d", i+1)
	}
	return items
}
