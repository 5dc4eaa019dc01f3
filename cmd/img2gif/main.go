package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/handiism/img2gif/internal/config"
	"github.com/handiism/img2gif/internal/convert"
	"github.com/handiism/img2gif/internal/decode"
	"github.com/handiism/img2gif/internal/log"
	"github.com/handiism/img2gif/internal/model"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

var exampleUsage = strings.TrimSpace(`
  img2gif ./frames out.gif
  img2gif --fps 12 --width 480 --optimize ./frames out.gif
  img2gif --duration 0.25 --loop 3 a.png b.png c.png out.gif
  img2gif --on-error skip --sort natural ./shots timelapse.gif
`)

// usageError marks errors in the command line itself.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(stderr, "\nInterrupted, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	code := exitCode(err)

	switch code {
	case exitOK:
	case exitInterrupted:
		fmt.Fprintln(stderr, styleWarning.Render("Conversion cancelled, no output written."))
	case exitUsage:
		fmt.Fprintln(stderr, styleError.Render("Error: ")+err.Error())
		fmt.Fprintln(stderr, "Run 'img2gif --help' for usage.")
	default:
		fmt.Fprintln(stderr, styleError.Render("Error: ")+err.Error())
	}
	return code
}

func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.As(err, &ue), errors.Is(err, model.ErrConfiguration):
		return exitUsage
	default:
		return exitFailure
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	settings := config.DefaultSettings()
	var (
		cfgPath     string
		verbose     bool
		quiet       bool
		listFormats bool
	)

	root := &cobra.Command{
		Use:   "img2gif [flags] <input>... <output.gif>",
		Short: "Convert a sequence of images into an animated GIF",
		Long: strings.TrimSpace(`
Convert a directory of images, or an explicit list of image files, into one
animated GIF.

A single directory input uses every recognized image directly inside it,
sorted by file name. Several inputs are used in the order given.

Options come from flags, then IMG2GIF_* environment variables, then the
settings file (default $HOME/.img2gif/config.toml), then built-in defaults.`),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if listFormats {
				return nil
			}
			if len(args) < 2 {
				return usageError{fmt.Errorf("need at least one input and an output path, got %d argument(s)", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if listFormats {
				printFormats(stdout)
				return nil
			}
			if verbose && quiet {
				return usageError{errors.New("--verbose and --quiet are mutually exclusive")}
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultPath()
			} else if _, err := os.Stat(cfgFile); err != nil {
				return usageError{fmt.Errorf("config file: %w", err)}
			}
			if err := settings.ApplyFile(cfgFile, changed); err != nil {
				return usageError{fmt.Errorf("load config: %w", err)}
			}
			// Environment overrides the file, flags override both.
			if err := settings.ApplyEnv(changed); err != nil {
				return usageError{err}
			}

			cfg, err := settings.ToGifConfig()
			if err != nil {
				return err
			}

			level, err := logLevel(settings.LogLevel, verbose, quiet)
			if err != nil {
				return usageError{err}
			}
			logger := log.NewZerologAdapter(stderr, level)

			out := newPrinter(stdout, verbose, quiet)
			converter := convert.NewConverter(logger, out.progress)

			input, output := args[:len(args)-1], args[len(args)-1]
			out.header(input, output, cfg)

			result, err := converter.ConvertWithConfig(cmd.Context(), input, output, cfg)
			if err != nil {
				return err
			}
			out.summary(result)
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	root.SetOut(stdout)
	root.SetErr(stderr)

	// Flags
	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to settings file, TOML or JSON (default: $HOME/.img2gif/config.toml)")

	f.Float64VarP(&settings.Duration, "duration", "d", settings.Duration, "seconds per frame (default 1; excludes --fps)")
	f.Float64Var(&settings.FPS, "fps", settings.FPS, "frames per second (excludes --duration)")
	f.IntVarP(&settings.Loop, "loop", "l", settings.Loop, "number of replays, 0 loops forever")

	f.IntVarP(&settings.Width, "width", "W", settings.Width, "target width in pixels, 0 keeps the source width")
	f.IntVarP(&settings.Height, "height", "H", settings.Height, "target height in pixels, 0 keeps the source height")
	f.BoolVar(&settings.MaintainAspectRatio, "maintain-aspect-ratio", settings.MaintainAspectRatio, "preserve the aspect ratio when resizing (both sides set: fit inside the box)")
	f.StringVar(&settings.Resample, "resample", settings.Resample, "resize filter: catmull-rom, bilinear, nearest, lanczos")

	f.BoolVarP(&settings.Optimize, "optimize", "O", settings.Optimize, "build an adaptive palette per frame for smaller output")
	f.IntVar(&settings.Colors, "colors", settings.Colors, "palette size with --optimize (2-256)")
	f.BoolVar(&settings.Dither, "dither", settings.Dither, "dither frames that need the fixed palette")

	f.StringVar(&settings.OnError, "on-error", settings.OnError, "bad frame policy: abort or skip")
	f.IntVar(&settings.Workers, "workers", settings.Workers, "parallel decode/transform workers, 0 uses every CPU")
	f.StringVar(&settings.Sort, "sort", settings.Sort, "directory order: lexical or natural")

	f.BoolVarP(&verbose, "verbose", "v", false, "show per-frame progress and debug logs")
	f.BoolVarP(&quiet, "quiet", "q", false, "print errors only")
	f.BoolVar(&listFormats, "list-formats", false, "list supported input formats and exit")

	return root
}

func logLevel(name string, verbose, quiet bool) (zerolog.Level, error) {
	switch {
	case verbose:
		return zerolog.DebugLevel, nil
	case quiet:
		return zerolog.ErrorLevel, nil
	}
	if name == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

func printFormats(w io.Writer) {
	fmt.Fprintln(w, styleTitle.Render("Extensions"))
	for _, ext := range convert.SupportedFormats() {
		fmt.Fprintln(w, "  "+ext)
	}
	fmt.Fprintln(w, styleTitle.Render("Decoders"))
	for _, name := range decode.Formats() {
		fmt.Fprintln(w, "  "+name)
	}
}
