package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Skryldev/flactranscode"
	"github.com/Skryldev/flactranscode/domain/model"
	"github.com/Skryldev/flactranscode/pkg/config"
	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
	"github.com/Skryldev/flactranscode/pkg/logger"
)

type rootOptions struct {
	profiles []string
	output   string
	jobs     int
	noExtras bool
	verbose  bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:   "flactranscode [flags] <source-dir>",
		Short: "Transcode a FLAC album into 16-bit FLAC and MP3 copies",
		Long: `Transcode every FLAC file under <source-dir> into each selected profile.
Outputs go to sibling directories named "<source-dir> (<label>)":

  flac16    16-bit FLAC, resampled to 44.1/48 kHz when above 48 kHz   (FLAC16)
  mp3-320   MP3, constant 320 kbps                                     (MP3-320)
  mp3-v0    MP3, VBR V0                                                (V0)
  mp3-v2    MP3, VBR V2                                                (V2)
  all       flac16, mp3-320 and mp3-v0

Tools are looked up on PATH unless FLACTRANSCODE_SOX, FLACTRANSCODE_FLAC or
FLACTRANSCODE_LAME name them.`,
		Example:       "  flactranscode -p flac16 -p mp3-v0 ~/Music/Demo\n  flactranscode -p all -o /srv/transcodes ~/Music/Demo",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return pkgerrors.NewUsageError("expected exactly one source directory, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return pkgerrors.NewUsageError("%v", err)
			}
			if cmd.Flags().Changed("jobs") {
				cfg.Workers = opts.jobs
			}
			cfg.OutputRoot = opts.output
			cfg.CopyExtras = !opts.noExtras
			cfg.Verbose = opts.verbose
			return runTranscode(cmd.Context(), cfg, args[0], opts.profiles, stdout, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return pkgerrors.NewUsageError("%v", err)
	})

	flags := rootCmd.Flags()
	flags.StringSliceVarP(&opts.profiles, "profile", "p", nil, "Output profiles: flac16, mp3-320, mp3-v0, mp3-v2, all")
	flags.StringVarP(&opts.output, "output", "o", "", "Directory receiving the output directories (default: parent of source)")
	flags.IntVarP(&opts.jobs, "jobs", "j", config.Default().Workers, "Number of files transcoded in parallel")
	flags.BoolVar(&opts.noExtras, "no-extras", false, "Do not copy cue sheets, logs and artwork")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return rootCmd
}

func runTranscode(ctx context.Context, cfg config.Config, source string, names []string, stdout, stderr io.Writer) error {
	profiles, err := model.ParseProfiles(names)
	if err != nil {
		return pkgerrors.NewUsageError("%v", err)
	}
	if len(profiles) == 0 {
		return pkgerrors.NewUsageError("select at least one output profile with --profile")
	}

	log, err := logger.ForTerminal(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	tr, err := flactranscode.New(cfg, log)
	if err != nil {
		return err
	}
	defer tr.Close()

	summary, err := tr.Run(ctx, source, profiles)
	if summary != nil {
		printSummary(stdout, summary)
		if len(summary.Failed) > 0 {
			fmt.Fprintln(stderr, renderFailures(summary))
		}
	}
	return err
}
