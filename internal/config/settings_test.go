package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/img2gif/internal/model"
)

func TestDefaultSettings_ToGifConfig(t *testing.T) {
	cfg, err := DefaultSettings().ToGifConfig()
	if err != nil {
		t.Fatalf("ToGifConfig() unexpected error: %v", err)
	}
	if cfg.DelayCentiseconds() != 100 {
		t.Errorf("DelayCentiseconds() = %d, want 100", cfg.DelayCentiseconds())
	}
	if !cfg.MaintainAspectRatio() || !cfg.Dither() || cfg.Optimize() {
		t.Errorf("unexpected flags: aspect %v, dither %v, optimize %v", cfg.MaintainAspectRatio(), cfg.Dither(), cfg.Optimize())
	}
	if cfg.ErrorPolicy() != model.PolicyAbort {
		t.Errorf("ErrorPolicy() = %q, want abort", cfg.ErrorPolicy())
	}
}

func TestSettings_ToGifConfigInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"fps and duration", func(s *Settings) { s.FPS, s.Duration = 10, 0.5 }},
		{"negative loop", func(s *Settings) { s.Loop = -1 }},
		{"unknown policy", func(s *Settings) { s.OnError = "ignore" }},
		{"too many colors", func(s *Settings) { s.Colors = 512 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(s)
			if _, err := s.ToGifConfig(); !errors.Is(err, model.ErrConfiguration) {
				t.Errorf("ToGifConfig() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if *s != *DefaultSettings() {
		t.Errorf("Load(missing) = %+v, want defaults", s)
	}
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `fps = 12.5
loop = 3
width = 320
maintain_aspect_ratio = false
on_error = "skip"
`,
		},
		{
			name:    "json",
			file:    "config.json",
			content: `{"fps": 12.5, "loop": 3, "width": 320, "maintain_aspect_ratio": false, "on_error": "skip"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			s, err := Load(path)
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if s.FPS != 12.5 || s.Loop != 3 || s.Width != 320 || s.MaintainAspectRatio || s.OnError != "skip" {
				t.Errorf("Load() = %+v", s)
			}
			// Keys absent from the file keep their defaults.
			if !s.Dither || s.Colors != 256 || s.Sort != "lexical" {
				t.Errorf("Load() lost defaults: %+v", s)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("fps = = 3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for malformed TOML")
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	for _, name := range []string{"config.toml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			want := DefaultSettings()
			want.Duration = 0.25
			want.Height = 240
			want.Optimize = true
			want.Colors = 64
			want.Sort = "natural"

			if err := want.Save(path); err != nil {
				t.Fatalf("Save() unexpected error: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if *got != *want {
				t.Errorf("Load(Save(s)) = %+v, want %+v", got, want)
			}
		})
	}
}

func TestSettings_ApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `duration = 0.5
width = 640
optimize = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("file fills unset options", func(t *testing.T) {
		s := DefaultSettings()
		if err := s.ApplyFile(path, map[string]bool{}); err != nil {
			t.Fatal(err)
		}
		if s.Duration != 0.5 || s.Width != 640 || !s.Optimize {
			t.Errorf("ApplyFile() = %+v", s)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		s := DefaultSettings()
		s.FPS = 20
		s.Width = 100
		if err := s.ApplyFile(path, map[string]bool{"fps": true, "width": true}); err != nil {
			t.Fatal(err)
		}
		if s.FPS != 20 || s.Duration != 0 {
			t.Errorf("timing = fps %v, duration %v; want the flag's fps only", s.FPS, s.Duration)
		}
		if s.Width != 100 || !s.Optimize {
			t.Errorf("ApplyFile() = %+v", s)
		}
		if _, err := s.ToGifConfig(); err != nil {
			t.Errorf("ToGifConfig() unexpected error: %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		s := DefaultSettings()
		s.Loop = 4
		if err := s.ApplyFile(filepath.Join(t.TempDir(), "none.toml"), nil); err != nil {
			t.Fatal(err)
		}
		if s.Loop != 4 {
			t.Errorf("Loop = %d, want 4", s.Loop)
		}
	})
}

func TestSettings_ApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		changed map[string]bool
		before  func(s *Settings)
		check   func(t *testing.T, s *Settings)
		wantErr bool
	}{
		{
			name: "applies variables",
			env: map[string]string{
				EnvFPS:      "15",
				EnvLoop:     "2",
				EnvWidth:    "480",
				EnvOptimize: "true",
				EnvDither:   "0",
				EnvOnError:  "skip",
				EnvSort:     "natural",
			},
			changed: map[string]bool{},
			check: func(t *testing.T, s *Settings) {
				if s.FPS != 15 || s.Loop != 2 || s.Width != 480 || !s.Optimize || s.Dither || s.OnError != "skip" || s.Sort != "natural" {
					t.Errorf("ApplyEnv() = %+v", s)
				}
			},
		},
		{
			name:    "respects changed flags",
			env:     map[string]string{EnvLoop: "9", EnvDuration: "2"},
			changed: map[string]bool{"loop": true, "fps": true},
			check: func(t *testing.T, s *Settings) {
				if s.Loop != 0 || s.Duration != 0 {
					t.Errorf("ApplyEnv() = loop %d, duration %v; want both untouched", s.Loop, s.Duration)
				}
			},
		},
		{
			name:   "env timing replaces file timing",
			env:    map[string]string{EnvFPS: "5"},
			before: func(s *Settings) { s.Duration = 0.5 },
			check: func(t *testing.T, s *Settings) {
				if s.FPS != 5 || s.Duration != 0 {
					t.Errorf("timing = fps %v, duration %v; want fps 5 only", s.FPS, s.Duration)
				}
			},
		},
		{name: "invalid int", env: map[string]string{EnvWidth: "wide"}, wantErr: true},
		{name: "invalid float", env: map[string]string{EnvDuration: "slow"}, wantErr: true},
		{name: "invalid bool", env: map[string]string{EnvOptimize: "maybe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			s := DefaultSettings()
			if tt.before != nil {
				tt.before(s)
			}

			err := s.ApplyEnv(tt.changed)
			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnv() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() unexpected error: %v", err)
			}
			tt.check(t, s)
		})
	}
}
