// Package log is the logging port used by the conversion pipeline.
//
// The pipeline only depends on the Logger interface. The command-line tool
// wires a zerolog-backed implementation, tests use the no-op logger:
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	logger.Info("frames resolved", log.Int("count", 12), log.String("input", dir))
//
//	quiet := log.NewNoopLogger()
package log
