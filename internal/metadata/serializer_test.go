package metadata

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surfacegen/genapi/internal/errors"
)

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("model.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("model.yml"))
	assert.Equal(t, FormatJSON, FormatFor("model.json"))
	assert.Equal(t, FormatJSON, FormatFor("MODEL.JSON.GZ"))
}

func TestWriteDocument_CompressedJSONRoundTrip(t *testing.T) {
	doc, err := Decode([]byte(collectionsDoc), FormatYAML)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "model.json.gz")
	require.NoError(t, WriteDocument(doc, path))

	asm, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Contoso.Collections", asm.Name)
	require.Len(t, asm.Namespaces[0].Types, 2)

	// JSON numbers decode as float64 and must still coerce to the enum's underlying type
	red := asm.Namespaces[0].Types[1].Fields[0]
	assert.Equal(t, uint64(1), red.ConstantValue)
}

func TestReadDocument_Missing(t *testing.T) {
	_, err := ReadDocument(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	diag, ok := err.(*errors.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, errors.ErrReadDocument, diag.Code)
}

func TestCompress_RoundTrip(t *testing.T) {
	data := []byte(collectionsDoc)
	compressed, err := Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))

	decompressed, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, decompressed)

	_, err = Compress(nil)
	assert.Error(t, err)
	_, err = Decompress(nil)
	assert.Error(t, err)
}
