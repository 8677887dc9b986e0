package ir

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	// Compile-time check via assignment
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = NewIRDate(2024, time.March, 1)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"aa", "a", 1},
		{"a", "aa", -1},
		{"A", "a", -1},
		{"", "", 0},
		{"", "a", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareKeysRFC8785(tt.a, tt.b))
		})
	}
}

func TestIRDate(t *testing.T) {
	d := NewIRDate(2024, time.March, 1)
	assert.Equal(t, "2024-03-01", d.String())

	parsed, err := ParseIRDate("2024-03-01")
	require.NoError(t, err)
	assert.True(t, d.Equal(parsed))

	_, err = ParseIRDate("01/03/2024")
	assert.Error(t, err)

	local := time.Date(2024, time.March, 1, 23, 59, 0, 0, time.FixedZone("X", 3600))
	assert.True(t, d.Equal(DateOf(local)), "DateOf keeps the calendar day")
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected IRValue
	}{
		{"null", `null`, IRNull{}},
		{"string", `"hello"`, IRString("hello")},
		{"int", `42`, IRInt(42)},
		{"bool", `true`, IRBool(true)},
		{"date-like string stays a string", `"2024-03-01"`, IRString("2024-03-01")},
		{"array", `[1, null, "a"]`, IRArray{IRInt(1), IRNull{}, IRString("a")}},
		{"object", `{"op": "var", "name": "x"}`, IRObject{"op": IRString("var"), "name": IRString("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseJSON([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParseJSONRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"simple float", `3.14`},
		{"scientific notation", `1e10`},
		{"nested float", `{"a": [1.5]}`},
		{"trailing data", `1 2`},
		{"malformed", `{"a":`},
		{"overflow", `92233720368547758070`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestIRObjectJSONRoundTrip(t *testing.T) {
	obj := IRObject{
		"present": IRString("value"),
		"missing": IRNull{},
		"list":    IRArray{IRInt(1), IRBool(false)},
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"list":[1,false],"missing":null,"present":"value"}`, string(data))

	var decoded IRObject
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, obj, decoded)
}

func TestIRArrayUnmarshalRejectsObject(t *testing.T) {
	var arr IRArray
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &arr))
}

func TestFromGo(t *testing.T) {
	day := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    any
		expected IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "fr", IRString("fr")},
		{"int", 24000, IRInt(24000)},
		{"uint8", uint8(7), IRInt(7)},
		{"bool", true, IRBool(true)},
		{"time", day, NewIRDate(2024, time.March, 1)},
		{"string slice", []string{"a", "b"}, IRArray{IRString("a"), IRString("b")}},
		{"any slice", []any{1, "x"}, IRArray{IRInt(1), IRString("x")}},
		{"map", map[string]int{"n": 1}, IRObject{"n": IRInt(1)}},
		{"passthrough", IRString("kept"), IRString("kept")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromGo(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestFromGoRejects(t *testing.T) {
	for _, input := range []any{1.5, float32(2), uint64(1 << 63), map[int]string{1: "a"}, struct{}{}} {
		_, err := FromGo(input)
		assert.Error(t, err, "input %#v", input)
	}
}

func TestToGo(t *testing.T) {
	v := IRObject{
		"s":    IRString("x"),
		"n":    IRInt(3),
		"null": IRNull{},
		"list": IRArray{IRBool(true)},
	}

	assert.Equal(t, map[string]any{
		"s":    "x",
		"n":    int64(3),
		"null": nil,
		"list": []any{true},
	}, ToGo(v))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "null", KindOf(IRNull{}))
	assert.Equal(t, "date", KindOf(NewIRDate(2020, time.January, 1)))
	assert.Equal(t, "array", KindOf(IRArray{}))
	assert.Equal(t, "nothing", KindOf(nil))
	assert.True(t, IsPrimitive(IRInt(1)))
	assert.False(t, IsPrimitive(IRArray{}))
}
