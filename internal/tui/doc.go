// Package tui provides a Bubble Tea terminal user interface for img2gif.
//
// The form collects the input (a directory or a comma-separated list of
// files), the output path, the frame rate and an optional width, plus
// toggles for palette optimization, aspect ratio, bad-frame policy, sort
// order and verbose logging. Defaults come from the user's settings file
// and IMG2GIF_* environment variables, and the options of every started
// conversion are saved back to the settings file.
//
// While converting, progress events from the converter feed the log pane
// and a progress bar polls the converter's frame counters.
package tui
