package bm25

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, ix *Index) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ix.Encode(&buf))
	return buf.Bytes()
}

func TestEncodeDecode_PreservesScores(t *testing.T) {
	ix := New(sampleCorpus(), DefaultParams())

	decoded, err := Decode(bytes.NewReader(encode(t, ix)))
	require.NoError(t, err)

	assert.Equal(t, ix.Len(), decoded.Len())
	assert.Equal(t, ix.Params(), decoded.Params())
	assert.Equal(t, ix.AverageDocLength(), decoded.AverageDocLength())
	for _, q := range [][]string{{"pro", "plan"}, {"month"}, {"saml", "okta"}, {"missing"}} {
		assert.Equal(t, ix.Scores(q), decoded.Scores(q), "query %v", q)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	a := encode(t, New(sampleCorpus(), DefaultParams()))
	b := encode(t, New(sampleCorpus(), DefaultParams()))

	assert.Equal(t, a, b)
}

func TestEncodeDecode_ReencodesIdentically(t *testing.T) {
	original := encode(t, New(sampleCorpus(), DefaultParams()))

	decoded, err := Decode(bytes.NewReader(original))
	require.NoError(t, err)

	assert.Equal(t, original, encode(t, decoded))
}

func TestEncodeDecode_EmptyIndex(t *testing.T) {
	decoded, err := Decode(bytes.NewReader(encode(t, New(nil, DefaultParams()))))

	require.NoError(t, err)
	assert.Equal(t, 0, decoded.Len())
}

func TestDecode_Corrupt(t *testing.T) {
	valid := encode(t, New(sampleCorpus(), DefaultParams()))

	badVersion := append([]byte{}, valid...)
	badVersion[4] = 9

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("NOPE"), valid[4:]...)},
		{"bad version", badVersion},
		{"truncated header", valid[:10]},
		{"truncated body", valid[:len(valid)-3]},
		{"trailing data", append(append([]byte{}, valid...), 0x01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := Decode(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrCorrupt)
			assert.Nil(t, ix)
		})
	}
}
