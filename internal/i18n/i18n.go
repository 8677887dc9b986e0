// Package i18n holds the localization catalogs used to describe expressions
// in natural language.
//
// Catalogs are Rails-style YAML documents keyed by locale at the top level:
//
//	en:
//	  fql:
//	    both: "BOTH (%{left}) AND (%{right})"
//
// Nested keys are flattened with dots, so the entry above is fql.both.
package i18n

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/en.yml locales/es.yml
var builtin embed.FS

// Catalog maps keys to message templates.
type Catalog interface {
	Lookup(key string) (string, bool)
}

// Locale is the flattened catalog for one language.
type Locale struct {
	tag      language.Tag
	messages map[string]string
}

// NewLocale creates a locale from already flattened messages.
func NewLocale(tag language.Tag, messages map[string]string) *Locale {
	l := &Locale{tag: tag, messages: make(map[string]string, len(messages))}
	for k, v := range messages {
		l.messages[k] = v
	}
	return l
}

// Tag returns the locale's language tag.
func (l *Locale) Tag() language.Tag { return l.tag }

// Lookup returns the template stored under key.
func (l *Locale) Lookup(key string) (string, bool) {
	if l == nil {
		return "", false
	}
	msg, ok := l.messages[key]
	return msg, ok
}

// Keys returns every key in sorted order.
func (l *Locale) Keys() []string {
	keys := make([]string, 0, len(l.messages))
	for k := range l.messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bundle is a set of locales. The first locale loaded is the fallback for
// tags that match nothing.
//
// Loading is not safe for concurrent use; load everything before handing
// catalogs out.
type Bundle struct {
	locales map[language.Tag]*Locale
	tags    []language.Tag
	matcher language.Matcher
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{locales: make(map[language.Tag]*Locale)}
}

// Default returns a new bundle holding the built-in English and Spanish
// catalogs, English first.
func Default() *Bundle {
	b := NewBundle()
	for _, name := range []string{"locales/en.yml", "locales/es.yml"} {
		data, err := builtin.ReadFile(name)
		if err != nil {
			panic(fmt.Sprintf("i18n: built-in catalog %s: %v", name, err))
		}
		if err := b.Load(data, name); err != nil {
			panic(err)
		}
	}
	return b
}

// LoadFile merges the catalog at path into b.
func (b *Bundle) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	return b.Load(data, path)
}

// Load merges a YAML catalog into b. Keys already present are overwritten.
// source names the document in errors.
func (b *Bundle) Load(data []byte, source string) error {
	var doc yaml.Node
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("catalog %s: empty document", source)
		}
		return fmt.Errorf("catalog %s: failed to parse YAML: %w", source, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("catalog %s: line %d: top level must map locales to messages", source, root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i], root.Content[i+1]
		tag, err := language.Parse(name.Value)
		if err != nil {
			return fmt.Errorf("catalog %s: line %d: locale %q: %w", source, name.Line, name.Value, err)
		}

		messages := make(map[string]string)
		if err := flatten(body, "", messages); err != nil {
			return fmt.Errorf("catalog %s: locale %s: %w", source, tag, err)
		}
		b.merge(tag, messages)
	}
	return nil
}

func (b *Bundle) merge(tag language.Tag, messages map[string]string) {
	l, ok := b.locales[tag]
	if !ok {
		l = &Locale{tag: tag, messages: make(map[string]string, len(messages))}
		b.locales[tag] = l
		b.tags = append(b.tags, tag)
		b.matcher = language.NewMatcher(b.tags)
	}
	for k, v := range messages {
		l.messages[k] = v
	}
}

func flatten(n *yaml.Node, prefix string, out map[string]string) error {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flatten(n.Content[i+1], key, out); err != nil {
				return err
			}
		}
		return nil
	case yaml.ScalarNode:
		if prefix == "" {
			return fmt.Errorf("line %d: expected a mapping", n.Line)
		}
		out[prefix] = n.Value
		return nil
	case yaml.AliasNode:
		return flatten(n.Alias, prefix, out)
	default:
		return fmt.Errorf("line %d: %s must be a string or a mapping", n.Line, prefix)
	}
}

// Tags lists the locales in load order.
func (b *Bundle) Tags() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Catalog returns the locale that best matches the preferred tags, or the
// fallback locale when nothing matches. It returns nil for an empty bundle.
func (b *Bundle) Catalog(preferred ...language.Tag) *Locale {
	if len(b.tags) == 0 {
		return nil
	}
	if len(preferred) == 0 {
		return b.locales[b.tags[0]]
	}
	_, idx, _ := b.matcher.Match(preferred...)
	return b.locales[b.tags[idx]]
}

// CatalogFor parses locale ("es", "es-MX", or an Accept-Language list) and
// returns the best matching catalog.
func (b *Bundle) CatalogFor(locale string) (*Locale, error) {
	if locale == "" {
		return b.Catalog(), nil
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	return b.Catalog(tags...), nil
}

var placeholder = regexp.MustCompile(`%\{(\w+)\}`)

// Interpolate replaces %{name} placeholders with args. Placeholders without
// an argument are left in place.
func Interpolate(template string, args map[string]string) string {
	if !strings.Contains(template, "%{") {
		return template
	}
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := args[m[2:len(m)-1]]; ok {
			return v
		}
		return m
	})
}
