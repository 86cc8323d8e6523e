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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/camorg/pkg/copyjob"
	"github.com/walteh/camorg/pkg/scan"
	"github.com/walteh/camorg/pkg/status"
)

// 📢 UserLogger provides user-friendly feedback on the terminal
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📊 LogStateChange logs a change to the overall run
func (u *UserLogger) LogStateChange(description string) {
	printer := pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"})
	printer.Println(description)
	u.log.Info().Msg(description)
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
		pterm.Error.Println(err)
		u.log.Error().Err(err).Msg(description)
		return
	}
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
	u.log.Warn().Msg(description)
}

// 🗓️ LogDateGroups renders the scan result as a table
func (u *UserLogger) LogDateGroups(res *scan.Result, previews int) error {
	data := pterm.TableData{{"Date", "Files", "Preview"}}
	for _, date := range res.Dates() {
		var names []string
		for _, p := range res.Previews(date, previews) {
			names = append(names, filepath.Base(p))
		}
		data = append(data, []string{date, fmt.Sprint(res.Count(date)), strings.Join(names, ", ")})
	}
	u.log.Debug().Int("dates", len(res.Dates())).Int("files", res.Total()).Msg("date groups")
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// 📋 LogSummary renders one row per job
func (u *UserLogger) LogSummary(rows []status.Row) error {
	data := pterm.TableData{{"Job", "Label", "State", "Files", "Error"}}
	for _, r := range rows {
		data = append(data, []string{
			string(r.ID),
			r.Label,
			stateText(r.State),
			fmt.Sprintf("%d/%d", r.Completed, r.Total),
			r.Error,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func stateText(s copyjob.State) string {
	switch s {
	case copyjob.StateCompleted:
		return pterm.Green(s.String())
	case copyjob.StateFailed:
		return pterm.Red(s.String())
	case copyjob.StateCancelled:
		return pterm.Yellow(s.String())
	default:
		return s.String()
	}
}
