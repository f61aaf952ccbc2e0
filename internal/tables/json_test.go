package tables

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/tabular-extractor/internal/domain"
)

func nameAgeTable() domain.NormalizedTable {
	return domain.NormalizedTable{
		Columns: []string{"Name", "Age"},
		Rows:    [][]string{{"Ann", "30"}, {"Bob", "41"}, {"Cy", "27"}},
	}
}

func TestEncodeJSON_Columns(t *testing.T) {
	got, err := EncodeJSON(nameAgeTable(), OrientColumns)
	require.NoError(t, err)
	assert.Equal(t,
		`{"Name":{"0":"Ann","1":"Bob","2":"Cy"},"Age":{"0":"30","1":"41","2":"27"}}`,
		got)
	assert.True(t, json.Valid([]byte(got)))
}

func TestEncodeJSON_Split(t *testing.T) {
	got, err := EncodeJSON(nameAgeTable(), OrientSplit)
	require.NoError(t, err)
	assert.Equal(t,
		`{"columns":["Name","Age"],"index":[0,1,2],"data":[["Ann","30"],["Bob","41"],["Cy","27"]]}`,
		got)
}

func TestEncodeJSON_Verbatim(t *testing.T) {
	table := domain.NormalizedTable{
		Columns: []string{"<b>"},
		Rows:    [][]string{{`a & "b"`}, {"naïve €"}},
	}
	got, err := EncodeJSON(table, OrientColumns)
	require.NoError(t, err)
	assert.Equal(t, `{"<b>":{"0":"a & \"b\"","1":"naïve €"}}`, got)
}

func TestEncodeJSON_Empty(t *testing.T) {
	empty := domain.NormalizedTable{Columns: []string{}, Rows: [][]string{}}

	got, err := EncodeJSON(empty, OrientColumns)
	require.NoError(t, err)
	assert.Equal(t, `{}`, got)

	headerOnly := domain.NormalizedTable{Columns: []string{"a", "b"}, Rows: [][]string{}}
	got, err = EncodeJSON(headerOnly, OrientColumns)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{},"b":{}}`, got)

	_, err = EncodeJSON(empty, Orient("records"))
	assert.Error(t, err)
}

func TestDecodeJSON_RoundTrip(t *testing.T) {
	tables := []domain.NormalizedTable{
		nameAgeTable(),
		{Columns: []string{}, Rows: [][]string{}},
		{Columns: []string{"a", "b"}, Rows: [][]string{}},
		{Columns: []string{"z", "a", "m"}, Rows: [][]string{{"1", "", "<3"}}},
	}

	for _, orient := range []Orient{OrientColumns, OrientSplit} {
		for _, table := range tables {
			encoded, err := EncodeJSON(table, orient)
			require.NoError(t, err)

			decoded, err := DecodeJSON(encoded, orient)
			require.NoError(t, err, "orient %s: %s", orient, encoded)
			assert.Equal(t, table, decoded, "orient %s", orient)
		}
	}
}

func TestDecodeJSON_Columns_UnorderedRowKeys(t *testing.T) {
	got, err := DecodeJSON(`{"x":{"1":"b","0":"a"}}`, OrientColumns)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b"}}, got.Rows)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	cases := []string{
		``,
		`[]`,
		`{"a":{"0":"x"},"b":{}}`,
		`{"a":{"0":"x","2":"y"}}`,
		`{"a":{"k":"x"}}`,
		`{"a":{"0":1}}`,
		`{} {}`,
	}
	for _, c := range cases {
		_, err := DecodeJSON(c, OrientColumns)
		assert.Error(t, err, "input %q", c)
	}

	_, err := DecodeJSON(`{"columns":["a"],"index":[0],"data":[["x","y"]]}`, OrientSplit)
	assert.Error(t, err)
}

func TestParseOrient(t *testing.T) {
	o, err := ParseOrient("")
	require.NoError(t, err)
	assert.Equal(t, OrientColumns, o)

	o, err = ParseOrient("split")
	require.NoError(t, err)
	assert.Equal(t, OrientSplit, o)

	_, err = ParseOrient("table")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": {\n    \"0\": \"x\"\n  }\n}", PrettyJSON(`{"a":{"0":"x"}}`))
	assert.Equal(t, "not json", PrettyJSON("not json"))
}
