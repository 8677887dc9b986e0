package i18n

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDefault(t *testing.T) {
	b := Default()
	require.Len(t, b.Tags(), 2)
	assert.Equal(t, "en", b.Tags()[0].String())
	assert.Equal(t, "es", b.Tags()[1].String())

	en := b.Catalog()
	msg, ok := en.Lookup("fql.both")
	require.True(t, ok)
	assert.Equal(t, "BOTH (%{left}) AND (%{right})", msg)

	msg, ok = en.Lookup("fql.attributes.dob")
	require.True(t, ok)
	assert.Equal(t, "date of birth", msg)

	_, ok = en.Lookup("fql")
	assert.False(t, ok, "only leaves are keys")
}

func TestBuiltinCatalogsShareKeys(t *testing.T) {
	b := Default()
	en := b.Catalog(language.English)
	es := b.Catalog(language.Spanish)

	for _, key := range en.Keys() {
		if strings.HasPrefix(key, "fql.attributes.") || strings.HasSuffix(key, "_html") {
			continue
		}
		_, ok := es.Lookup(key)
		assert.True(t, ok, "es is missing %s", key)
	}
}

func TestCatalogMatching(t *testing.T) {
	b := Default()

	tests := []struct {
		name      string
		preferred []language.Tag
		expected  string
	}{
		{"exact", []language.Tag{language.Spanish}, "es"},
		{"regional", []language.Tag{language.MustParse("es-MX")}, "es"},
		{"fallback", []language.Tag{language.French}, "en"},
		{"first match wins", []language.Tag{language.French, language.Spanish}, "es"},
		{"none", nil, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, b.Catalog(tt.preferred...).Tag().String())
		})
	}
}

func TestCatalogFor(t *testing.T) {
	b := Default()

	l, err := b.CatalogFor("es-AR")
	require.NoError(t, err)
	assert.Equal(t, "es", l.Tag().String())

	l, err = b.CatalogFor("fr-CH, es;q=0.9, en;q=0.8")
	require.NoError(t, err)
	assert.Equal(t, "es", l.Tag().String())

	l, err = b.CatalogFor("")
	require.NoError(t, err)
	assert.Equal(t, "en", l.Tag().String())
}

func TestLoadFileMerges(t *testing.T) {
	b := Default()
	require.NoError(t, b.LoadFile(filepath.Join("testdata", "extra.yml")))

	assert.Len(t, b.Tags(), 3)

	en := b.Catalog(language.English)
	msg, _ := en.Lookup("fql.equals")
	assert.Equal(t, "%{left} is %{right}", msg, "later documents override")
	msg, _ = en.Lookup("fql.both")
	assert.Equal(t, "BOTH (%{left}) AND (%{right})", msg, "untouched keys survive")
	msg, _ = en.Lookup("fql.attributes.amount")
	assert.Equal(t, "gross amount", msg)

	fr := b.Catalog(language.French)
	msg, ok := fr.Lookup("fql.equals")
	require.True(t, ok)
	assert.Equal(t, "%{left} est égal à %{right}", msg)

	// A fresh default bundle is unaffected
	msg, _ = Default().Catalog().Lookup("fql.equals")
	assert.Equal(t, "%{left} equals %{right}", msg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"empty", "", "empty document"},
		{"malformed", "en: [", "failed to parse YAML"},
		{"not a mapping", "- en", "top level must map locales"},
		{"bad locale", "not a locale!: {}", "locale"},
		{"list value", "en:\n  fql:\n    both: [a, b]\n", "fql.both must be a string or a mapping"},
		{"bare scalar", "en: hello\n", "expected a mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBundle().Load([]byte(tt.data), "test.yml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "test.yml")
		})
	}

	assert.Error(t, NewBundle().LoadFile(filepath.Join("testdata", "missing.yml")))
}

func TestEmptyBundle(t *testing.T) {
	b := NewBundle()
	assert.Nil(t, b.Catalog())
	var l *Locale
	_, ok := l.Lookup("fql.both")
	assert.False(t, ok)
}

func TestNewLocaleCopies(t *testing.T) {
	src := map[string]string{"fql.not": "not %{expr}"}
	l := NewLocale(language.German, src)
	src["fql.not"] = "changed"

	msg, ok := l.Lookup("fql.not")
	require.True(t, ok)
	assert.Equal(t, "not %{expr}", msg)
	assert.Equal(t, []string{"fql.not"}, l.Keys())
}

func TestInterpolate(t *testing.T) {
	args := map[string]string{"left": "a", "right": "b"}

	assert.Equal(t, "a equals b", Interpolate("%{left} equals %{right}", args))
	assert.Equal(t, "plain", Interpolate("plain", args))
	assert.Equal(t, "a and %{missing}", Interpolate("%{left} and %{missing}", args))
	assert.Equal(t, "%{left}", Interpolate("%{left}", map[string]string{"left": "%{left}"}), "no recursive expansion")
}
