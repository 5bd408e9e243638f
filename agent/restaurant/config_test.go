package restaurant

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "restaurant.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
name: Messirve
address: Av. Corrientes 1450
maps_url: https://maps.example.com/messirve
description: Neighborhood parrilla.
menu_url: https://messirve.example.com/menu
menu:
  - name: Bife de chorizo
    description: Grilled sirloin with chimichurri.
  - name: Flan casero
    description: House flan.
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "Messirve" {
		t.Fatalf("name = %q", cfg.Name)
	}
	if cfg.MapsURL != "https://maps.example.com/messirve" {
		t.Fatalf("maps_url = %q", cfg.MapsURL)
	}
	if len(cfg.Menu) != 2 || cfg.Menu[1].Name != "Flan casero" {
		t.Fatalf("menu = %#v", cfg.Menu)
	}
}

func TestLoadRejectsMissingName(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "address: somewhere\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a nameless restaurant")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if _, err := Load("   "); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}
