package config

import "os"

// Environment variables read by ApplyEnv.
const (
	EnvDuration            = "IMG2GIF_DURATION"
	EnvFPS                 = "IMG2GIF_FPS"
	EnvLoop                = "IMG2GIF_LOOP"
	EnvWidth               = "IMG2GIF_WIDTH"
	EnvHeight              = "IMG2GIF_HEIGHT"
	EnvMaintainAspectRatio = "IMG2GIF_MAINTAIN_ASPECT_RATIO"
	EnvResample            = "IMG2GIF_RESAMPLE"
	EnvOptimize            = "IMG2GIF_OPTIMIZE"
	EnvColors              = "IMG2GIF_COLORS"
	EnvDither              = "IMG2GIF_DITHER"
	EnvOnError             = "IMG2GIF_ON_ERROR"
	EnvWorkers             = "IMG2GIF_WORKERS"
	EnvSort                = "IMG2GIF_SORT"
	EnvLogLevel            = "IMG2GIF_LOG_LEVEL"
)

// ApplyEnv overlays IMG2GIF_* environment variables onto s, skipping every
// option whose flag is marked in changed. Unset or empty variables change
// nothing; malformed numbers and booleans are errors.
func (s *Settings) ApplyEnv(changed map[string]bool) error {
	set := newSetter(changed)

	if err := set.setTimingFromEnv(os.Getenv(EnvDuration), os.Getenv(EnvFPS), s); err != nil {
		return err
	}

	ints := []struct {
		flag, name string
		dst        *int
	}{
		{"loop", EnvLoop, &s.Loop},
		{"width", EnvWidth, &s.Width},
		{"height", EnvHeight, &s.Height},
		{"colors", EnvColors, &s.Colors},
		{"workers", EnvWorkers, &s.Workers},
	}
	for _, v := range ints {
		if err := set.setIntFromEnv(v.flag, v.name, os.Getenv(v.name), v.dst); err != nil {
			return err
		}
	}

	bools := []struct {
		flag, name string
		dst        *bool
	}{
		{"maintain-aspect-ratio", EnvMaintainAspectRatio, &s.MaintainAspectRatio},
		{"optimize", EnvOptimize, &s.Optimize},
		{"dither", EnvDither, &s.Dither},
	}
	for _, v := range bools {
		if err := set.setBoolFromEnv(v.flag, v.name, os.Getenv(v.name), v.dst); err != nil {
			return err
		}
	}

	set.setStringFromEnv("resample", os.Getenv(EnvResample), &s.Resample)
	set.setStringFromEnv("on-error", os.Getenv(EnvOnError), &s.OnError)
	set.setStringFromEnv("sort", os.Getenv(EnvSort), &s.Sort)
	set.setStringFromEnv("log-level", os.Getenv(EnvLogLevel), &s.LogLevel)

	return nil
}
