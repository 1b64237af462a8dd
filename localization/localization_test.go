package localization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/readium/readium-shelf-server/config"
)

func writeTranslation(t *testing.T, folder, lang, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(folder, lang+".json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLocalizeMessage(t *testing.T) {
	folder := t.TempDir()
	writeTranslation(t, folder, "en", `{"Book not found": "Book not found"}`)
	writeTranslation(t, folder, "fr", `{"Book not found": "Livre introuvable"}`)

	config.Config.Localization = config.Localization{
		Languages:       []string{"en", "fr"},
		Folder:          folder,
		DefaultLanguage: "en",
	}

	if err := InitTranslations(); err != nil {
		t.Fatal(err)
	}

	var msg string
	LocalizeMessage("fr-FR,fr;q=0.9", &msg, "Book not found")
	if msg != "Livre introuvable" {
		t.Errorf("message = %q, want the french translation", msg)
	}

	LocalizeMessage("en-US", &msg, "Book not found")
	if msg != "Book not found" {
		t.Errorf("message = %q, want the english text", msg)
	}

	// unknown language falls back to the default
	LocalizeMessage("de", &msg, "Book not found")
	if msg != "Book not found" {
		t.Errorf("message = %q, want the default language text", msg)
	}

	// unknown key passes through
	LocalizeMessage("fr", &msg, "Untranslated key")
	if msg != "Untranslated key" {
		t.Errorf("message = %q, want the key unchanged", msg)
	}
}

func TestLocalizeMessageUninitialized(t *testing.T) {
	matcher = nil

	var msg string
	LocalizeMessage("fr", &msg, "Book not found")
	if msg != "Book not found" {
		t.Errorf("message = %q, want the key unchanged", msg)
	}
}
