// Package i18n resolves message keys (metric display names) per locale from
// bundled defaults and optional user-provided YAML files.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// DefaultLocale is used when a locale has no messages of its own.
const DefaultLocale = "en"

// Catalog maps locale -> message key -> text. It is read-only after Load and
// safe for concurrent use.
type Catalog struct {
	messages map[string]map[string]string
}

// Load returns the bundled catalog with every <locale>.yaml (or .yml) from dir
// merged on top. User entries shadow bundled ones. An empty dir loads the
// bundled catalog only; a missing dir is not an error.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{messages: make(map[string]map[string]string)}

	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return nil, fmt.Errorf("i18n: reading embedded defaults: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		data, err := defaultsFS.ReadFile("defaults/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("i18n: reading bundled %q: %w", entry.Name(), err)
		}
		if err := c.merge(localeOf(entry.Name()), data); err != nil {
			return nil, fmt.Errorf("i18n: parse bundled %q: %w", entry.Name(), err)
		}
	}

	if dir == "" {
		return c, nil
	}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !isYAML(d.Name()) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := c.merge(localeOf(d.Name()), data); err != nil {
			slog.Warn("i18n: skipping malformed catalog file", "file", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("i18n: loading %s: %w", dir, err)
	}
	return c, nil
}

// New builds a catalog from in-memory messages, mostly for tests and callers
// that source translations elsewhere.
func New(messages map[string]map[string]string) *Catalog {
	c := &Catalog{messages: make(map[string]map[string]string, len(messages))}
	for locale, m := range messages {
		dst := make(map[string]string, len(m))
		for k, v := range m {
			dst[k] = v
		}
		c.messages[normalizeLocale(locale)] = dst
	}
	return c
}

// Message returns the text for key in locale. It tries the full locale
// (en_us), then its language (en), then DefaultLocale, and finally returns
// fallback.
func (c *Catalog) Message(locale, key, fallback string) string {
	for _, l := range candidates(locale) {
		if m, ok := c.messages[l]; ok {
			if text, ok := m[key]; ok && text != "" {
				return text
			}
		}
	}
	return fallback
}

// Locales lists the loaded locales in sorted order.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.messages))
	for l := range c.messages {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of messages for locale.
func (c *Catalog) Len(locale string) int {
	return len(c.messages[normalizeLocale(locale)])
}

func (c *Catalog) merge(locale string, data []byte) error {
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return err
	}
	dst, ok := c.messages[locale]
	if !ok {
		dst = make(map[string]string, len(m))
		c.messages[locale] = dst
	}
	for k, v := range m {
		dst[k] = v
	}
	return nil
}

func candidates(locale string) []string {
	l := normalizeLocale(locale)
	out := make([]string, 0, 3)
	if l != "" {
		out = append(out, l)
		if i := strings.IndexByte(l, '_'); i > 0 {
			out = append(out, l[:i])
		}
	}
	return append(out, DefaultLocale)
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "-", "_"))
}

func localeOf(filename string) string {
	return normalizeLocale(strings.TrimSuffix(filename, filepath.Ext(filename)))
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
