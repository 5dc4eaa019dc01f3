package config

import (
	"fmt"
	"strconv"
)

// setter applies values from a lower-precedence source, leaving alone every
// option whose flag was set on the command line.
type setter struct {
	changed map[string]bool
}

func newSetter(changed map[string]bool) *setter {
	return &setter{changed: changed}
}

func (s *setter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *setter) setInt(flag string, value int, dst *int) {
	if s.changed[flag] {
		return
	}
	*dst = value
}

func (s *setter) setBool(flag string, value bool, dst *bool) {
	if s.changed[flag] {
		return
	}
	*dst = value
}

// timing applies duration and fps as one option: a command-line value for
// either one wins over both, and setting one clears the other.
func (s *setter) setTiming(duration, fps float64, dst *Settings) {
	if s.changed["duration"] || s.changed["fps"] {
		return
	}
	dst.Duration, dst.FPS = duration, fps
}

func (s *setter) setStringFromEnv(flag, value string, dst *string) {
	s.setString(flag, value, dst)
}

func (s *setter) setIntFromEnv(flag, name, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*dst = i
	return nil
}

func (s *setter) setBoolFromEnv(flag, name, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*dst = b
	return nil
}

func (s *setter) setTimingFromEnv(duration, fps string, dst *Settings) error {
	if (duration == "" && fps == "") || s.changed["duration"] || s.changed["fps"] {
		return nil
	}
	d, f := 0.0, 0.0
	var err error
	if duration != "" {
		if d, err = strconv.ParseFloat(duration, 64); err != nil {
			return fmt.Errorf("parse %s: %w", EnvDuration, err)
		}
	}
	if fps != "" {
		if f, err = strconv.ParseFloat(fps, 64); err != nil {
			return fmt.Errorf("parse %s: %w", EnvFPS, err)
		}
	}
	dst.Duration, dst.FPS = d, f
	return nil
}
