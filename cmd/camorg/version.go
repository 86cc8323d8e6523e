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
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/camorg/pkg/config"
	"github.com/walteh/camorg/pkg/scan"
)

// 📷 buildReport is what camorg knows about itself: the binary it was built
// from and the camera formats it will pick up
type buildReport struct {
	Version     string
	Revision    string
	Dirty       bool
	GoVersion   string
	Platform    string
	Settings    string
	DateSources []scan.DateSource
	Extensions  []string
}

// readBuildReport fills the report from the embedded build info
func readBuildReport(settingsFile string) buildReport {
	r := buildReport{
		Version:     "dev",
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		Settings:    settingsFile,
		DateSources: []scan.DateSource{scan.DateSourceFilesystem, scan.DateSourceMetadata},
		Extensions:  scan.DefaultExtensions,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return r
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		r.Version = v
	}
	for _, kv := range bi.Settings {
		switch kv.Key {
		case "vcs.revision":
			r.Revision = kv.Value
			if len(r.Revision) > 12 {
				r.Revision = r.Revision[:12]
			}
		case "vcs.modified":
			r.Dirty = kv.Value == "true"
		}
	}
	return r
}

// rows lays the report out as key/value table rows
func (r buildReport) rows() [][]string {
	revision := orNone(r.Revision)
	if r.Dirty {
		revision += " (modified)"
	}
	sources := make([]string, len(r.DateSources))
	for i, s := range r.DateSources {
		sources[i] = string(s)
	}
	return [][]string{
		{"Version", r.Version},
		{"Revision", revision},
		{"Go", r.GoVersion},
		{"Platform", r.Platform},
		{"Settings", r.Settings},
		{"Date sources", strings.Join(sources, ", ")},
		{"Formats", strings.Join(r.Extensions, " ")},
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func newVersionCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version, settings location and supported formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settingsFile := opts.settingsFile
			if settingsFile == "" {
				settingsFile = config.DefaultPath()
			}
			table, err := pterm.DefaultTable.WithData(readBuildReport(settingsFile).rows()).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "📷 camorg version info\n%s\n", table)
			return nil
		},
	}
}
