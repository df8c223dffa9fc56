package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLUTSettings(t *testing.T) {
	asset := filepath.Join(t.TempDir(), "T_Pre-Integrated_Lut.exr")

	guid, err := Write(asset, LUTSettings())
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, guid)

	m, err := Read(MetaPath(asset))
	require.NoError(t, err)
	assert.Equal(t, 2, m.FileFormatVersion)
	assert.Equal(t, guid, m.GUID)
	ti := m.TextureImporter
	assert.Equal(t, 0, ti.Mipmaps.SRGBTexture)
	assert.Equal(t, 0, ti.Mipmaps.EnableMipMap)
	assert.Equal(t, WrapClamp, ti.TextureSettings.WrapU)
	assert.Equal(t, WrapClamp, ti.TextureSettings.WrapV)
	require.Len(t, ti.PlatformSettings, 1)
	assert.Equal(t, CompressionNone, ti.PlatformSettings[0].TextureCompression)

	raw, err := os.ReadFile(MetaPath(asset))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "sRGBTexture: 0")
	assert.Contains(t, string(raw), "TextureImporter:")
}

func TestWriteKeepsGUID(t *testing.T) {
	asset := filepath.Join(t.TempDir(), "lut.exr")
	const guid = "0123456789abcdef0123456789abcdef"
	require.NoError(t, os.WriteFile(MetaPath(asset), []byte("fileFormatVersion: 2\nguid: "+guid+"\n"), 0644))

	got, err := Write(asset, LUTSettings())
	require.NoError(t, err)
	assert.Equal(t, guid, got)

	again, err := Write(asset, LUTSettings())
	require.NoError(t, err)
	assert.Equal(t, guid, again)
}

func TestWriteRejectsBrokenMeta(t *testing.T) {
	asset := filepath.Join(t.TempDir(), "lut.exr")
	require.NoError(t, os.WriteFile(MetaPath(asset), []byte("guid: [unterminated"), 0644))

	_, err := Write(asset, LUTSettings())
	assert.Error(t, err)
}

func TestNewGUIDUnique(t *testing.T) {
	a, err := NewGUID()
	require.NoError(t, err)
	b, err := NewGUID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
