package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	gi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu        sync.RWMutex
	localizer *gi18n.Localizer
)

// Init loads the embedded message catalogs and selects lang (falling back to
// English). An empty lang is resolved from LANG.
func Init(lang string) (*gi18n.Localizer, error) {
	bundle := gi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("loading locale %s: %w", entry.Name(), err)
		}
	}

	if lang == "" {
		lang = detectLanguage()
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	loc := gi18n.NewLocalizer(bundle, tag.String(), language.English.String())

	mu.Lock()
	localizer = loc
	mu.Unlock()
	return loc, nil
}

// T returns the localized message for id, or id itself when no catalog has it.
func T(id string) string {
	mu.RLock()
	loc := localizer
	mu.RUnlock()

	if loc == nil {
		var err error
		if loc, err = Init(""); err != nil {
			return id
		}
	}

	msg, err := loc.Localize(&gi18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}

func detectLanguage() string {
	lang := os.Getenv("LANG")
	if lang == "" || lang == "C" || lang == "POSIX" {
		return "en"
	}
	// en_US.UTF-8 -> en-US
	lang = strings.SplitN(lang, ".", 2)[0]
	return strings.ReplaceAll(lang, "_", "-")
}
