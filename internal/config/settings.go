package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	ioutils "github.com/handiism/img2gif/internal/io"
	"github.com/handiism/img2gif/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Timing. Set at most one of Duration and FPS; 0 leaves it unset.
	Duration float64 `json:"duration" toml:"duration"`
	FPS      float64 `json:"fps" toml:"fps"`
	Loop     int     `json:"loop" toml:"loop"`

	// Size
	Width               int    `json:"width" toml:"width"`
	Height              int    `json:"height" toml:"height"`
	MaintainAspectRatio bool   `json:"maintain_aspect_ratio" toml:"maintain_aspect_ratio"`
	Resample            string `json:"resample" toml:"resample"` // catmull-rom, bilinear, nearest, lanczos

	// Palette
	Optimize bool `json:"optimize" toml:"optimize"`
	Colors   int  `json:"colors" toml:"colors"`
	Dither   bool `json:"dither" toml:"dither"`

	// Pipeline
	OnError string `json:"on_error" toml:"on_error"` // abort, skip
	Workers int    `json:"workers" toml:"workers"`
	Sort    string `json:"sort" toml:"sort"` // lexical, natural

	// Logging
	LogLevel string `json:"log_level" toml:"log_level"` // debug, info, warn, error
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Duration: 0,
		FPS:      0,
		Loop:     0,

		Width:               0,
		Height:              0,
		MaintainAspectRatio: true,
		Resample:            string(model.ResampleCatmullRom),

		Optimize: false,
		Colors:   model.DefaultMaxColors,
		Dither:   true,

		OnError: string(model.PolicyAbort),
		Workers: 0,
		Sort:    string(model.SortLexical),

		LogLevel: "warn",
	}
}

// DefaultPath returns ~/.img2gif/config.toml, or "" when the home directory
// is unknown.
func DefaultPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".img2gif", "config.toml")
	}
	return ""
}

// Load reads settings from a file. Files ending in .toml are parsed as TOML,
// anything else as JSON. Keys missing from the file keep their defaults, and
// a missing file yields DefaultSettings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isTOML(path) {
		err = toml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a file, as TOML or JSON depending on the extension.
func (s *Settings) Save(path string) error {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	_, err = ioutils.WriteFileAtomic(context.Background(), path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	return err
}

// ApplyFile overlays the settings file at path onto s, skipping every option
// whose flag is marked in changed. A missing file changes nothing.
func (s *Settings) ApplyFile(path string, changed map[string]bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	file, err := Load(path)
	if err != nil {
		return err
	}
	set := newSetter(changed)

	set.setTiming(file.Duration, file.FPS, s)
	set.setInt("loop", file.Loop, &s.Loop)
	set.setInt("width", file.Width, &s.Width)
	set.setInt("height", file.Height, &s.Height)
	set.setBool("maintain-aspect-ratio", file.MaintainAspectRatio, &s.MaintainAspectRatio)
	set.setString("resample", file.Resample, &s.Resample)
	set.setBool("optimize", file.Optimize, &s.Optimize)
	set.setInt("colors", file.Colors, &s.Colors)
	set.setBool("dither", file.Dither, &s.Dither)
	set.setString("on-error", file.OnError, &s.OnError)
	set.setInt("workers", file.Workers, &s.Workers)
	set.setString("sort", file.Sort, &s.Sort)
	set.setString("log-level", file.LogLevel, &s.LogLevel)

	return nil
}

// ToGifConfig validates the settings and converts them to a GifConfig.
func (s *Settings) ToGifConfig() (model.GifConfig, error) {
	return model.NewGifConfig(model.GifOptions{
		FPS:                 s.FPS,
		Duration:            s.Duration,
		Loop:                s.Loop,
		Width:               s.Width,
		Height:              s.Height,
		MaintainAspectRatio: s.MaintainAspectRatio,
		Optimize:            s.Optimize,
		ErrorPolicy:         model.ErrorPolicy(s.OnError),
		Resample:            model.ResampleFilter(s.Resample),
		Sort:                model.SortOrder(s.Sort),
		MaxColors:           s.Colors,
		DisableDither:       !s.Dither,
		Workers:             s.Workers,
	})
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
