// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/camorg/pkg/config"
	"github.com/walteh/camorg/pkg/scan"
	"gitlab.com/tozd/go/errors"
)

// rootOpts contains shared options used by all commands
type rootOpts struct {
	settingsFile string
	debug        bool

	// console receives the per-file job output, stdout unless a test swaps it
	console io.Writer
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	return newRootCmdWithOpts(&rootOpts{console: os.Stdout})
}

func newRootCmdWithOpts(opts *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "camorg",
		Short: "Organize camera files into date folders",
		Long: `camorg scans a camera card or folder, groups its photos and videos by
capture date and copies each date group into target/<date>/<extension>/
as an independent background job.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(setupLogging(cmd.Context(), opts.debug))
		},
	}

	addRootFlags(cmd, opts)

	cmd.AddCommand(
		newScanCmd(opts),
		newCopyCmd(opts),
		newVersionCmd(opts),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, opts *rootOpts) {
	cmd.PersistentFlags().StringVarP(&opts.settingsFile, "settings", "s", config.DefaultPath(), "settings file path (.yaml, .json or .hcl)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
}

// setupLogging puts a stderr console logger into ctx
func setupLogging(ctx context.Context, debug bool) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
		pterm.EnableDebugMessages()
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// loadSettings reads the settings file
func (o *rootOpts) loadSettings(ctx context.Context) (*config.Settings, error) {
	settings, err := config.Load(ctx, o.settingsFile)
	if err != nil {
		return nil, errors.Errorf("loading settings: %w", err)
	}
	return settings, nil
}

// scanOptions turns settings into scanner options
func scanOptions(ctx context.Context, settings *config.Settings) scan.Options {
	logger := zerolog.Ctx(ctx)
	return scan.Options{
		Extensions:     settings.Extensions,
		IgnorePatterns: settings.IgnorePatterns,
		DateSource:     scan.ParseDateSource(settings.DateSource),
		Progress: func(processed, total int) {
			logger.Debug().Int("processed", processed).Int("total", total).Msg("scanning")
		},
	}
}

// resolveFolder picks the argument at i, falling back to a remembered folder
func resolveFolder(args []string, i int, remembered, what string) (string, error) {
	if len(args) > i && args[i] != "" {
		return args[i], nil
	}
	if remembered != "" {
		return remembered, nil
	}
	return "", errors.Errorf("no %s folder given and none remembered", what)
}
