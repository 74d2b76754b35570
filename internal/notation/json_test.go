package notation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomNotation(r *rand.Rand) Notation {
	lines := make([][]Note, r.Intn(6))
	for i := range lines {
		line := make([]Note, r.Intn(9))
		for j := range line {
			line[j] = Note{
				Hole:  MinHole + r.Intn(MaxHole),
				Blow:  r.Intn(2) == 0,
				Slide: r.Intn(2) == 0,
			}
		}
		lines[i] = line
	}
	return Notation{Lines: lines}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		original := randomNotation(r)

		encoded, err := Encode(original)
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.True(t, original.Equal(*decoded), "round trip mismatch for %s", encoded)
	}
}

func TestEncodeWritesVersionAndAllFields(t *testing.T) {
	n := Notation{Lines: [][]Note{{{Hole: 4, Blow: false, Slide: true}}}}
	assert.Equal(t,
		`{"version":1,"lines":[[{"hole":4,"blow":false,"slide":true}]]}`,
		MustEncode(n))

	assert.Equal(t, `{"version":1,"lines":[]}`, MustEncode(Notation{}))
}

func TestDecodeDefaults(t *testing.T) {
	n, err := Decode(`{"lines":[[{"hole":3},{"hole":5,"blow":false},{"hole":"7","slide":true}]]}`)
	require.NoError(t, err)

	assert.Equal(t, [][]Note{{
		{Hole: 3, Blow: true, Slide: false},
		{Hole: 5, Blow: false, Slide: false},
		{Hole: 7, Blow: true, Slide: true},
	}}, n.Lines)
}

func TestDecodeNullFlagsUseDefaults(t *testing.T) {
	n, err := Decode(`{"lines":[[{"hole":4,"blow":null},{"hole":6,"blow":false,"slide":null}]]}`)
	require.NoError(t, err)

	assert.Equal(t, [][]Note{{
		{Hole: 4, Blow: true, Slide: false},
		{Hole: 6, Blow: false, Slide: false},
	}}, n.Lines)
}

func TestDecodeTruncatesFractionalHoles(t *testing.T) {
	n, err := Decode(`{"version":1,"lines":[[{"hole":4.7}]]}`)
	require.NoError(t, err)
	assert.Equal(t, 4, n.Lines[0][0].Hole)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"blank", "   "},
		{"plain text", "4 -4 5 -5 6"},
		{"not an object", "[1,2,3]"},
		{"missing lines", `{"version":1}`},
		{"null lines", `{"lines":null}`},
		{"lines not array", `{"lines":{"a":1}}`},
		{"line not array", `{"lines":[{"hole":1}]}`},
		{"null line", `{"lines":[null]}`},
		{"missing hole", `{"lines":[[{"hole":1},{"blow":true}]]}`},
		{"hole not numeric", `{"lines":[[{"hole":"four"}]]}`},
		{"hole out of range", `{"lines":[[{"hole":13}]]}`},
		{"hole zero", `{"lines":[[{"hole":0}]]}`},
		{"truncated json", `{"lines":[[{"hole":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Decode(tt.content)
			assert.Error(t, err)
			assert.Nil(t, n)
			assert.Nil(t, Parse(tt.content))
		})
	}
}

func TestDecodeEmptyLinesIsValid(t *testing.T) {
	n := Parse(`{"version":1,"lines":[]}`)
	require.NotNil(t, n)
	assert.Empty(t, n.Lines)
	assert.False(t, n.HasNotes())
}
