package i18n

import (
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/iamwavecut/guardbot/resources"
)

const (
	sourceLanguage   = "en"
	translationsPath = "i18n/translations.yml"
)

var state = struct {
	once            sync.Once
	mu              sync.RWMutex
	translations    map[string]map[string]string
	languages       []string
	defaultLanguage string
}{
	defaultLanguage: sourceLanguage,
}

func load() {
	state.once.Do(func() {
		content, err := resources.FS.ReadFile(translationsPath)
		if err != nil {
			log.WithField("error", err.Error()).Error("cant load translations")
			return
		}
		dict := map[string]map[string]string{}
		if err := yaml.Unmarshal(content, &dict); err != nil {
			log.WithField("error", err.Error()).Error("cant unmarshal translations")
			return
		}

		seen := map[string]struct{}{sourceLanguage: {}}
		for _, locales := range dict {
			for locale := range locales {
				seen[strings.ToLower(locale)] = struct{}{}
			}
		}
		languages := make([]string, 0, len(seen))
		for lang := range seen {
			languages = append(languages, lang)
		}
		sort.Strings(languages)

		state.mu.Lock()
		state.translations = dict
		state.languages = languages
		state.mu.Unlock()
	})
}

func SetDefaultLanguage(lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = sourceLanguage
	}
	state.mu.Lock()
	state.defaultLanguage = lang
	state.mu.Unlock()
}

func GetDefaultLanguage() string {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.defaultLanguage
}

func GetLanguagesList() []string {
	load()
	state.mu.RLock()
	defer state.mu.RUnlock()
	return append([]string(nil), state.languages...)
}

// Get returns the translation of an English key, or the key itself when no
// translation exists.
func Get(key, lang string) string {
	if lang == "" {
		lang = GetDefaultLanguage()
	}
	if strings.EqualFold(lang, sourceLanguage) {
		return key
	}
	load()

	state.mu.RLock()
	defer state.mu.RUnlock()
	if res, ok := state.translations[key][strings.ToUpper(lang)]; ok && res != "" {
		return res
	}
	log.WithField("key", key).Trace("no translation")
	return key
}
