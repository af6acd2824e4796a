package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/manusawe00z/go-bot/cmd/gotts/internal"
	"github.com/manusawe00z/go-bot/cmd/gotts/internal/serve"
	"github.com/manusawe00z/go-bot/cmd/gotts/internal/version"
	"github.com/manusawe00z/go-bot/pkg/config"
	"github.com/manusawe00z/go-bot/pkg/logger"
	"github.com/manusawe00z/go-bot/pkg/publish"
)

const usageLine = "Usage: gotts <text> [language] [output_file]"

// errReported marks errors that were already logged.
var errReported = errors.New("reported")

// run executes the CLI and returns the process exit code.
func run(args []string) int {
	return runWith(args, os.Stdout, os.Stderr)
}

func runWith(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

type speakOptions struct {
	envFile string
	backend string
	tempDir string
	slow    bool
	debug   bool
}

func newRootCommand(logOut io.Writer) *cobra.Command {
	var opts speakOptions

	cmd := &cobra.Command{
		Use:   "gotts <text> [language] [output_file]",
		Short: "Convert text to an MP3 file",
		Long: `Convert text to speech and write it to output_file (default tts.mp3).
language defaults to GOTTS_LANGUAGE, or "en" when unset.
The audio is staged in a temporary file and renamed into place.`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return speak(cmd.Context(), logOut, opts, args)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().StringVarP(&opts.backend, "backend", "b", "", "TTS backend: google or kokoro (overrides GOTTS_BACKEND)")
	cmd.Flags().StringVar(&opts.tempDir, "temp-dir", "", "Directory to stage audio in (overrides GOTTS_TEMP_DIR)")
	cmd.Flags().BoolVar(&opts.slow, "slow", false, "Speak slowly (google backend)")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")

	cmd.AddCommand(
		serve.NewServeCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func speak(ctx context.Context, logOut io.Writer, opts speakOptions, args []string) error {
	if len(args) == 0 || args[0] == "" {
		logger.New(logOut).Error(usageLine)
		return errReported
	}

	cfg, err := internal.LoadConfig(opts.envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOptions(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := internal.NewLogger(cfg, logOut, opts.debug)
	if err != nil {
		return err
	}
	defer log.Close()

	req, _ := parseArgs(cfg, args)

	pub, err := internal.NewPublisher(cfg, log)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := pub.Publish(ctx, req); err != nil {
		// Publish has logged the failure.
		return errors.Join(errReported, err)
	}
	return nil
}

func applyOptions(cfg *config.Config, opts speakOptions) {
	if opts.backend != "" {
		cfg.Voice.Backend = opts.backend
	}
	if opts.tempDir != "" {
		cfg.TempDir = opts.tempDir
	}
	if opts.slow {
		cfg.Voice.Google.Slow = true
	}
}

// parseArgs maps <text> [language] [output_file] onto a request. It
// reports false when text is missing or empty.
func parseArgs(cfg *config.Config, args []string) (publish.Request, bool) {
	if len(args) == 0 || args[0] == "" {
		return publish.Request{}, false
	}

	req := publish.Request{
		Text:        args[0],
		Language:    cfg.Language,
		Destination: cfg.Output,
	}
	if len(args) > 1 && args[1] != "" {
		req.Language = args[1]
	}
	if len(args) > 2 && args[2] != "" {
		req.Destination = args[2]
	}
	return req, true
}
