package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one job in the output manifest.
type ManifestEntry struct {
	Name             string      `json:"name"`
	Mode             string      `json:"mode"`
	Output           string      `json:"output"`
	Preview          string      `json:"preview,omitempty"`
	GUID             string      `json:"guid,omitempty"`
	Width            int         `json:"width"`
	Height           int         `json:"height"`
	BaseSoftness     *float32    `json:"base_softness,omitempty"`
	ScatterColor     *[3]float32 `json:"scatter_color,omitempty"`
	ScatterSpread    *float32    `json:"scatter_spread,omitempty"`
	ReduceYellowing  *float32    `json:"reduce_yellowing,omitempty"`
	CurvatureFalloff *float32    `json:"curvature_falloff,omitempty"`
	Success          bool        `json:"success"`
	Error            string      `json:"error,omitempty"`
	ElapsedMS        int64       `json:"elapsed_ms"`
}

// WriteManifest writes manifest.json listing every job's outcome.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Name:      r.Name,
			Mode:      r.Mode,
			Output:    r.Output,
			Preview:   r.Preview,
			GUID:      r.GUID,
			Width:     r.Width,
			Height:    r.Height,
			Success:   r.Success,
			Error:     r.Error,
			ElapsedMS: r.Elapsed.Milliseconds(),
		}
		if p := r.Params; p != nil {
			e.BaseSoftness = &p.BaseSoftness
			e.ScatterColor = &p.ScatterColor
			e.ScatterSpread = &p.ScatterSpread
			e.ReduceYellowing = &p.ReduceYellowing
			e.CurvatureFalloff = &p.CurvatureFalloff
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
