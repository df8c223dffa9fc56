// Package importer writes the Unity .meta sidecar that tells the asset
// pipeline how to import a baked LUT.
package importer

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Texture wrap and compression codes as the editor serializes them.
const (
	WrapRepeat = 0
	WrapClamp  = 1

	CompressionNone = 0
)

// Settings describes how the baked texture must be imported.
type Settings struct {
	SRGB        bool
	Mipmaps     bool
	WrapMode    int
	Compression int
}

// LUTSettings is the import every baked LUT needs: linear data, no mips,
// clamped edges, uncompressed.
func LUTSettings() Settings {
	return Settings{
		SRGB:        false,
		Mipmaps:     false,
		WrapMode:    WrapClamp,
		Compression: CompressionNone,
	}
}

// Meta mirrors the parts of a TextureImporter .meta file that we set.
type Meta struct {
	FileFormatVersion int             `yaml:"fileFormatVersion"`
	GUID              string          `yaml:"guid"`
	TextureImporter   TextureImporter `yaml:"TextureImporter"`
}

type TextureImporter struct {
	SerializedVersion int                `yaml:"serializedVersion"`
	Mipmaps           MipmapSettings     `yaml:"mipmaps"`
	TextureSettings   TextureSettings    `yaml:"textureSettings"`
	TextureType       int                `yaml:"textureType"`
	TextureShape      int                `yaml:"textureShape"`
	AlphaUsage        int                `yaml:"alphaUsage"`
	PlatformSettings  []PlatformSettings `yaml:"platformSettings"`
}

type MipmapSettings struct {
	EnableMipMap  int `yaml:"enableMipMap"`
	SRGBTexture   int `yaml:"sRGBTexture"`
	LinearTexture int `yaml:"linearTexture"`
}

type TextureSettings struct {
	SerializedVersion int `yaml:"serializedVersion"`
	FilterMode        int `yaml:"filterMode"`
	Aniso             int `yaml:"aniso"`
	WrapU             int `yaml:"wrapU"`
	WrapV             int `yaml:"wrapV"`
	WrapW             int `yaml:"wrapW"`
}

type PlatformSettings struct {
	SerializedVersion  int    `yaml:"serializedVersion"`
	BuildTarget        string `yaml:"buildTarget"`
	MaxTextureSize     int    `yaml:"maxTextureSize"`
	TextureFormat      int    `yaml:"textureFormat"`
	TextureCompression int    `yaml:"textureCompression"`
}

// MetaPath returns the sidecar path of an asset.
func MetaPath(assetPath string) string {
	return assetPath + ".meta"
}

// NewMeta builds the sidecar for s with the given guid.
func NewMeta(guid string, s Settings) Meta {
	return Meta{
		FileFormatVersion: 2,
		GUID:              guid,
		TextureImporter: TextureImporter{
			SerializedVersion: 12,
			Mipmaps: MipmapSettings{
				EnableMipMap: b2i(s.Mipmaps),
				SRGBTexture:  b2i(s.SRGB),
			},
			TextureSettings: TextureSettings{
				SerializedVersion: 2,
				FilterMode:        1,
				Aniso:             1,
				WrapU:             s.WrapMode,
				WrapV:             s.WrapMode,
				WrapW:             s.WrapMode,
			},
			AlphaUsage: 1,
			PlatformSettings: []PlatformSettings{{
				SerializedVersion:  3,
				BuildTarget:        "DefaultTexturePlatform",
				MaxTextureSize:     2048,
				TextureFormat:      -1,
				TextureCompression: s.Compression,
			}},
			TextureShape: 1,
		},
	}
}

// Write creates or replaces the .meta next to assetPath. An existing guid is
// kept so references to the asset survive a re-bake. Returns the guid used.
func Write(assetPath string, s Settings) (string, error) {
	path := MetaPath(assetPath)

	guid, err := existingGUID(path)
	if err != nil {
		return "", err
	}
	if guid == "" {
		if guid, err = NewGUID(); err != nil {
			return "", err
		}
	}

	data, err := yaml.Marshal(NewMeta(guid, s))
	if err != nil {
		return "", fmt.Errorf("importer: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("importer: write %s: %w", path, err)
	}
	return guid, nil
}

// Read parses a .meta file.
func Read(path string) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("importer: read %s: %w", path, err)
	}
	var m Meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Meta{}, fmt.Errorf("importer: parse %s: %w", path, err)
	}
	return m, nil
}

func existingGUID(path string) (string, error) {
	m, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.GUID, nil
}

// NewGUID returns 32 random lowercase hex digits.
func NewGUID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("importer: guid: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
