package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeItemsFile(t *testing.T, rows int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.csv")
	content := "item_es\n"
	for i := 1; i <= rows; i++ {
		content += fmt.Sprintf("Pregunta %d\n", i)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write items file: %v", err)
	}
	return path
}

func TestLoadItems(t *testing.T) {
	items, err := LoadItems(writeItemsFile(t, ItemCount))
	if err != nil {
		t.Fatalf("LoadItems error: %v", err)
	}
	if len(items) != ItemCount {
		t.Fatalf("got %d items, want %d", len(items), ItemCount)
	}
	if items[0] != "Pregunta 1" || items[ItemCount-1] != fmt.Sprintf("Pregunta %d", ItemCount) {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestLoadItemsWrongCount(t *testing.T) {
	items, err := LoadItems(writeItemsFile(t, ItemCount-1))
	if err == nil {
		t.Fatalf("expected error for short items file")
	}
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorItemConfig {
		t.Fatalf("expected item_config error, got %v", err)
	}
	if len(items) != ItemCount || items[0] != "Item 1" {
		t.Fatalf("expected placeholder fallback, got %v", items)
	}
}

func TestLoadItemsMissingFile(t *testing.T) {
	items, err := LoadItems(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if len(items) != ItemCount || items[ItemCount-1] != fmt.Sprintf("Item %d", ItemCount) {
		t.Fatalf("expected placeholder fallback, got %v", items)
	}
}

func TestLoadItemsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	if err := os.WriteFile(path, []byte("pregunta\na\nb\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadItems(path); err == nil {
		t.Fatalf("expected error for missing item_es column")
	}
}
