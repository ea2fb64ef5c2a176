package cuecfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string            `json:"name" yaml:"name" toml:"name"`
	Env  map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
}

func TestUnmarshalJSONWithComments(t *testing.T) {
	in := []byte(`{
  // comment
  "name": "minio", /* inline */
  "env": {"A": "<b>",},
}`)
	var got sample
	require.NoError(t, Unmarshal(in, ".jsonc", &got))
	assert.Equal(t, sample{Name: "minio", Env: map[string]string{"A": "<b>"}}, got)
}

func TestMarshalJSONNoHTMLEscape(t *testing.T) {
	out, err := MarshalJSON(sample{Name: "a&b<c>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"a&b<c>\"\n}", string(out))
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := Marshal(sample{}, ".xml")
	assert.Error(t, err)
	assert.Error(t, Unmarshal([]byte("<x/>"), ".xml", &sample{}))
	assert.False(t, IsSupportedExtension(".js"))
	assert.True(t, IsSupportedExtension(".yml"))
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")

	created, err := InitFile(path, sample{Name: "first"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = InitFile(path, sample{Name: "second"})
	require.NoError(t, err)
	assert.False(t, created, "existing files are left alone")

	var got sample
	require.NoError(t, ParseFile(path, &got))
	assert.Equal(t, "first", got.Name)
}

func TestParseFileWithExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecosystem")
	require.NoError(t, os.WriteFile(path, []byte("name: minio-ui\n"), 0o644))

	var got sample
	require.NoError(t, ParseFileWithExtension(path, ".yaml", &got))
	assert.Equal(t, "minio-ui", got.Name)
}

func TestHash(t *testing.T) {
	a, err := Hash(sample{Name: "minio"})
	require.NoError(t, err)
	b, err := Hash(sample{Name: "minio"})
	require.NoError(t, err)
	c, err := Hash(sample{Name: "minio-ui"})
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	missing, err := FileHash(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	empty, err := Hash(nil)
	require.NoError(t, err)
	assert.NotEqual(t, empty, missing)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", missing)
}
