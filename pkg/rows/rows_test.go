package rows

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/etiket/pkg/errors"
)

const sample = `[
	{"URUN_ADI": "Vida M4", "LOT_NO": "L-2024-01", "SERI_NO": "SN0001", "ADET": 12.50, "AKTIF": true},
	{"URUN_ADI": "Somun", "SERI_NO": "SN0002", "LOT_NO": "", "NOT": null},
	{"URUN_ADI": "Pul", "EXTRA": "x"}
]`

func TestImportJSON(t *testing.T) {
	set, err := ImportJSON([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	assert.Equal(t, []string{"URUN_ADI", "LOT_NO", "SERI_NO", "ADET", "AKTIF"}, set.Columns,
		"columns follow the first row in input order")

	first := set.Rows[0]
	assert.Equal(t, "12.50", first["ADET"], "numbers keep their literal form")
	assert.Equal(t, "true", first["AKTIF"])

	second := set.Rows[1]
	v, ok := second.Get("LOT_NO")
	assert.True(t, ok, "empty string is present")
	assert.Empty(t, v)
	_, ok = second.Get("NOT")
	assert.False(t, ok, "null is missing")
}

func TestImportJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `[{"a":`},
		{"not an array", `{"a": "b"}`},
		{"empty array", `[]`},
		{"non-object row", `[{"a": "b"}, "c"]`},
		{"nested value", `[{"a": {"b": 1}}]`},
		{"array value", `[{"a": [1, 2]}]`},
		{"blank header", `[{" ": "b"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportJSON([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidRows), "code = %s", errors.GetCode(err))
		})
	}
}

func TestReadJSON(t *testing.T) {
	set, err := ReadJSON(strings.NewReader(`[{"SERI_NO": "A"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"SERI_NO"}, set.Columns)
}

func TestSelect(t *testing.T) {
	set, err := ImportJSON([]byte(sample))
	require.NoError(t, err)

	got, err := set.Select([]int{2, 0, 9, -1, 0})
	require.NoError(t, err)
	require.Len(t, got, 3, "out-of-range dropped, duplicates kept")
	assert.Equal(t, "Pul", got[0]["URUN_ADI"])
	assert.Equal(t, "Vida M4", got[1]["URUN_ADI"])
	assert.Equal(t, "Vida M4", got[2]["URUN_ADI"])

	_, err = set.Select([]int{5, 6})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSelection))

	_, err = set.Select(nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSelection))
}

func TestAll(t *testing.T) {
	set, err := ImportJSON([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, set.All())
}

func TestParseIndices(t *testing.T) {
	tests := []struct {
		input   string
		want    []int
		wantErr bool
	}{
		{"0", []int{0}, false},
		{"0,2, 5-7", []int{0, 2, 5, 6, 7}, false},
		{"3,3", []int{3, 3}, false},
		{" 1 - 2 ", []int{1, 2}, false},
		{"", nil, true},
		{",", nil, true},
		{"a", nil, true},
		{"-1", nil, true},
		{"4-2", nil, true},
		{"1-x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseIndices(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidSelection))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
