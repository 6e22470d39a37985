package plugparam

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type FromJSONSuite struct {
	suite.Suite
}

func TestFromJSONSuite(t *testing.T) {
	suite.Run(t, new(FromJSONSuite))
}

func (s *FromJSONSuite) TestPreservesKeyOrder() {
	doc, err := FromJSON([]byte(`{"zeta": 1, "alpha": 2, "mid": 3}`))

	s.Require().NoError(err)
	s.Assert().Equal(KindObject, doc.Kind())
	s.Assert().Equal([]string{"zeta", "alpha", "mid"}, doc.Keys())
}

func (s *FromJSONSuite) TestScalars() {
	doc := MustFromJSON(`{"s": "x\ny", "n": 4.50, "t": true, "f": false, "z": null}`)

	str, ok := mustGet(s.T(), doc, "s").AsString()
	s.Assert().True(ok)
	s.Assert().Equal("x\ny", str)

	text, ok := mustGet(s.T(), doc, "n").NumberText()
	s.Assert().True(ok)
	s.Assert().Equal("4.50", text)

	b, ok := mustGet(s.T(), doc, "t").AsBool()
	s.Assert().True(ok)
	s.Assert().True(b)

	b, ok = mustGet(s.T(), doc, "f").AsBool()
	s.Assert().True(ok)
	s.Assert().False(b)

	s.Assert().True(mustGet(s.T(), doc, "z").IsNull())
}

func (s *FromJSONSuite) TestArrays() {
	doc := MustFromJSON(`[1, [2, 3], {"a": []}]`)

	s.Require().Equal(KindArray, doc.Kind())
	s.Assert().Equal(3, doc.Len())
	s.Assert().Equal(2, doc.Index(1).Len())
	inner := mustGet(s.T(), doc.Index(2), "a")
	s.Assert().Equal(KindArray, inner.Kind())
	s.Assert().Equal(0, inner.Len())
	s.Assert().True(doc.Index(7).IsNull())
}

func (s *FromJSONSuite) TestInvalid() {
	for _, raw := range []string{``, `{not valid}`, `{"a": }`, `[1, 2`} {
		_, err := FromJSON([]byte(raw))
		s.Assert().ErrorIs(err, ErrInvalidJSON, raw)
	}
}

func (s *FromJSONSuite) TestGetIsCaseSensitive() {
	doc := MustFromJSON(`{"Radius": 1}`)

	_, ok := doc.Get("radius")
	s.Assert().False(ok)
	_, ok = doc.Get("Radius")
	s.Assert().True(ok)
}

func (s *FromJSONSuite) TestMarshalKeepsOrder() {
	raw := `{"b":1,"a":[true,null,"q\"uote"],"c":{"d":2.50}}`
	doc := MustFromJSON(raw)

	out, err := doc.MarshalJSON()

	s.Require().NoError(err)
	s.Assert().Equal(raw, string(out))
}

func (s *FromJSONSuite) TestDecode() {
	doc := MustFromJSON(`{"name": "roads", "width": 2, "tags": ["a", "b"]}`)

	var v struct {
		Name  string   `json:"name"`
		Width int      `json:"width"`
		Tags  []string `json:"tags"`
	}
	s.Require().NoError(doc.Decode(&v))
	s.Assert().Equal("roads", v.Name)
	s.Assert().Equal(2, v.Width)
	s.Assert().Equal([]string{"a", "b"}, v.Tags)
}

func (s *FromJSONSuite) TestUnmarshalJSON() {
	var d Document
	s.Require().NoError(d.UnmarshalJSON([]byte(`{"k": [1]}`)))
	s.Assert().Equal([]string{"k"}, d.Keys())
}

func TestFromYAML(t *testing.T) {
	t.Run("preserves mapping order and scalar types", func(t *testing.T) {
		doc, err := FromYAML([]byte(`
type: wms
opacity: 0.5
count: 3
enabled: true
missing: ~
layers:
  - roads
  - rivers
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"type", "opacity", "count", "enabled", "missing", "layers"}, doc.Keys())

		n, ok := mustGet(t, doc, "count").AsInt()
		assert.True(t, ok)
		assert.Equal(t, 3, n)

		f, ok := mustGet(t, doc, "opacity").AsFloat()
		assert.True(t, ok)
		assert.Equal(t, 0.5, f)

		b, ok := mustGet(t, doc, "enabled").AsBool()
		assert.True(t, ok)
		assert.True(t, b)

		assert.True(t, mustGet(t, doc, "missing").IsNull())
		assert.Equal(t, 2, mustGet(t, doc, "layers").Len())
	})

	t.Run("quoted numbers stay strings", func(t *testing.T) {
		doc, err := FromYAML([]byte(`version: "1.3.0"`))
		require.NoError(t, err)
		assert.Equal(t, KindString, mustGet(t, doc, "version").Kind())
	})

	t.Run("resolves aliases", func(t *testing.T) {
		doc, err := FromYAML([]byte(`
base: &b {url: "http://a.example"}
copy: *b
`))
		require.NoError(t, err)
		assert.True(t, mustGet(t, doc, "base").Equal(mustGet(t, doc, "copy")))
	})

	t.Run("caps alias expansion", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
		for i := 1; i < 8; i++ {
			ref := fmt.Sprintf("*l%d", i-1)
			fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, strings.TrimSuffix(strings.Repeat(ref+", ", 10), ", "))
		}

		_, err := FromYAML([]byte(b.String()))

		assert.ErrorIs(t, err, errYAMLExpansion)
	})

	t.Run("rejects complex keys", func(t *testing.T) {
		_, err := FromYAML([]byte("? [a, b]\n: 1\n"))
		assert.Error(t, err)
	})

	t.Run("rejects NaN", func(t *testing.T) {
		_, err := FromYAML([]byte(`x: .nan`))
		assert.Error(t, err)
	})

	t.Run("empty input is null", func(t *testing.T) {
		doc, err := FromYAML(nil)
		require.NoError(t, err)
		assert.True(t, doc.IsNull())
	})

	t.Run("matches the JSON equivalent", func(t *testing.T) {
		y, err := FromYAML([]byte("a: [1, 2]\nb: {c: x}\n"))
		require.NoError(t, err)
		assert.True(t, y.Equal(MustFromJSON(`{"b": {"c": "x"}, "a": [1, 2.0]}`)))
	})
}

func TestFromValue(t *testing.T) {
	doc, err := FromValue(map[string]any{
		"radius": 4.5,
		"count":  int64(2),
		"names":  []any{"a", nil, true},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"count", "names", "radius"}, doc.Keys())
	assert.True(t, doc.Equal(MustFromJSON(`{"radius": 4.5, "count": 2, "names": ["a", null, true]}`)))

	_, err = FromValue(map[string]any{"bad": struct{}{}})
	assert.ErrorContains(t, err, "bad")
}

func TestNumbersStayJSON(t *testing.T) {
	for _, text := range []string{"NaN", "Inf", "-Inf", "0x1p3", " 1", "1_000", "+1", ".5", ""} {
		_, err := NumText(text)
		assert.Error(t, err, text)
	}
	for _, text := range []string{"0", "-0.5", "1e400", "2E+1"} {
		_, err := NumText(text)
		assert.NoError(t, err, text)
	}

	_, err := FromValue(map[string]any{"x": math.NaN()})
	assert.ErrorContains(t, err, "x")
	_, err = FromValue([]float64{1, math.Inf(1)})
	assert.ErrorContains(t, err, "[1]")
	assert.Panics(t, func() { Num(math.Inf(-1)) })

	doc, err := FromValue(map[string]any{"f": float32(1.5)})
	require.NoError(t, err)
	out, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"f": 1.5}`, string(out))
}

func TestObjectLastDuplicateWins(t *testing.T) {
	doc := Object(M("a", IntNum(1)), M("b", IntNum(2)), M("a", IntNum(3)))

	assert.Equal(t, []string{"a", "b"}, doc.Keys())
	n, _ := mustGet(t, doc, "a").AsInt()
	assert.Equal(t, 3, n)
}

func TestDocumentInterface(t *testing.T) {
	doc := MustFromJSON(`{"a": [1, "x", false, null]}`)

	assert.Equal(t, map[string]any{"a": []any{1.0, "x", false, nil}}, doc.Interface())
}

func mustGet(t *testing.T, doc Document, key string) Document {
	t.Helper()
	v, ok := doc.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}
