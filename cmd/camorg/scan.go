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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/camorg/pkg/scan"
	"gitlab.com/tozd/go/errors"
)

// newScanCmd lists the date groups of a source folder
func newScanCmd(opts *rootOpts) *cobra.Command {
	var dateSource string

	cmd := &cobra.Command{
		Use:   "scan [source]",
		Short: "List the date groups found in a folder",
		Long: `Scan walks the source folder, keeps supported camera files and groups
them by capture date. Without an argument the last used source is scanned.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user := NewUserLogger(ctx)

			settings, err := opts.loadSettings(ctx)
			if err != nil {
				return err
			}
			if dateSource != "" {
				settings.DateSource = dateSource
				if err := settings.Validate(); err != nil {
					return errors.Errorf("invalid --date-source: %w", err)
				}
			}

			source, err := resolveFolder(args, 0, settings.SourceFolder, "source")
			if err != nil {
				return err
			}

			res, err := scan.Scan(ctx, source, scanOptions(ctx, settings))
			if err != nil {
				return errors.Errorf("scanning %s: %w", source, err)
			}

			if res.Total() == 0 {
				user.LogValidation(false, fmt.Sprintf("No camera files found in %s", source), nil)
				return nil
			}

			user.LogStateChange(fmt.Sprintf("Found %d files in %d date groups", res.Total(), len(res.Dates())))
			return user.LogDateGroups(res, settings.PreviewCount)
		},
	}

	cmd.Flags().StringVar(&dateSource, "date-source", "", "filesystem or metadata (defaults to the settings file)")

	return cmd
}
