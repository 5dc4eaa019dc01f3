// Package config provides configuration management for img2gif.
//
// This package handles:
//   - Loading and saving settings from TOML or JSON files
//   - Default configuration values
//   - Environment overrides (IMG2GIF_*)
//   - Conversion to a validated model.GifConfig
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// One second per frame, infinite loop, no resize,
//	// exact or Plan 9 palette, abort on the first bad frame
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// The format follows the extension: .toml is TOML, anything else JSON.
//
// # Precedence
//
// The command line binds its flags to a Settings value and then overlays the
// lower-precedence sources, skipping options whose flag was given:
//
//	changed := map[string]bool{"fps": true}
//	_ = settings.ApplyFile(path, changed) // settings file
//	_ = settings.ApplyEnv(changed)        // IMG2GIF_* beats the file
//	cfg, err := settings.ToGifConfig()
//
// Duration and fps are one option: a flag for either one hides both from
// the file and the environment.
package config
