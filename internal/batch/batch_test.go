package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skin-lut-baker/internal/config"
	"skin-lut-baker/internal/encode"
	"skin-lut-baker/internal/importer"
	"skin-lut-baker/internal/lut"
)

func job(flags config.Flags) config.Config {
	var cfg config.Config
	cfg.Resolve(flags)
	return cfg
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	off := false
	jobs := []config.Config{
		job(config.Flags{Width: 16, Height: 8, Output: filepath.Join(dir, "physics.exr")}),
		job(config.Flags{Mode: config.ModeGradient, Width: 16, Height: 8, Output: filepath.Join(dir, "grad.png"),
			Preview: filepath.Join(dir, "grad_preview.webp"), PreviewSize: 4, WriteMeta: &off}),
		job(config.Flags{Width: 16, Height: 8, Output: filepath.Join(dir, "bad.exr")}),
	}
	jobs[2].Height = 1

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	results := Run(context.Background(), Config{Workers: 2, Log: log}, jobs)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, config.ModePhysics, results[0].Mode)
	assert.Regexp(t, `^[0-9a-f]{32}$`, results[0].GUID)
	require.NotNil(t, results[0].Params)
	assert.Equal(t, 16, results[0].Params.Width)

	assert.True(t, results[1].Success, results[1].Error)
	assert.Empty(t, results[1].GUID)
	assert.Nil(t, results[1].Params)

	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, "at least 2")

	img, err := encode.Load(filepath.Join(dir, "physics.exr"))
	require.NoError(t, err)
	want, err := lut.Generate(context.Background(), jobs[0].Params(), lut.Options{})
	require.NoError(t, err)
	assert.Equal(t, want.Pix, img.Pix)

	meta, err := importer.Read(importer.MetaPath(filepath.Join(dir, "physics.exr")))
	require.NoError(t, err)
	assert.Equal(t, results[0].GUID, meta.GUID)

	preview, err := encode.Load(filepath.Join(dir, "grad_preview.webp"))
	require.NoError(t, err)
	assert.Equal(t, 4, preview.Width)
	_, err = os.Stat(importer.MetaPath(filepath.Join(dir, "grad.png")))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "bad.exr"))
	assert.True(t, os.IsNotExist(err))

	var failed int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	var debug []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.DebugLevel && e.Data["name"] == "physics" {
			debug = append(debug, e.Message)
		}
	}
	assert.ElementsMatch(t, []string{"physics params", "writing EXR", "import settings written"}, debug)
}

func TestRunEmpty(t *testing.T) {
	assert.Empty(t, Run(context.Background(), Config{Workers: 4}, nil))
}

func TestBakeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Bake(ctx, nil, job(config.Flags{Width: 8, Height: 8, Output: filepath.Join(t.TempDir(), "lut.exr")}), lut.Options{})
	assert.False(t, res.Success)
	assert.Equal(t, context.Canceled.Error(), res.Error)
}

func TestWriteManifest(t *testing.T) {
	p := lut.DefaultParams()
	results := []Result{
		{Name: "skin", Mode: config.ModePhysics, Output: "skin.exr", Width: 256, Height: 256, Params: &p, Success: true, GUID: "abc"},
		{Name: "broken", Mode: config.ModeGradient, Output: "broken.png", Error: "boom"},
	}
	path := filepath.Join(t.TempDir(), "out", "manifest.json")
	require.NoError(t, WriteManifest(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)

	assert.Equal(t, "skin", entries[0].Name)
	assert.True(t, entries[0].Success)
	require.NotNil(t, entries[0].ScatterColor)
	assert.Equal(t, p.ScatterColor, *entries[0].ScatterColor)
	assert.Equal(t, "abc", entries[0].GUID)

	assert.False(t, entries[1].Success)
	assert.Equal(t, "boom", entries[1].Error)
	assert.Nil(t, entries[1].BaseSoftness)
}
