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
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/camorg/pkg/config"
	"github.com/walteh/camorg/pkg/copyjob"
	"github.com/walteh/camorg/pkg/log"
	"github.com/walteh/camorg/pkg/scan"
	"github.com/walteh/camorg/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// copyFlags are the options of the copy command
type copyFlags struct {
	dates   []string
	label   string
	maxJobs int
}

// newCopyCmd copies date groups into the target folder
func newCopyCmd(opts *rootOpts) *cobra.Command {
	flags := &copyFlags{maxJobs: -1}

	cmd := &cobra.Command{
		Use:   "copy [source] [target]",
		Short: "Copy date groups into target/<label>/<extension>/",
		Long: `Copy scans the source folder and starts one background job per selected
date group. Each job copies its files into target/<label>/<extension>/,
renaming on collisions. Sources are never modified.

Interrupting the command cancels every job at its next file boundary.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			settings, err := opts.loadSettings(ctx)
			if err != nil {
				return err
			}

			source, err := resolveFolder(args, 0, settings.SourceFolder, "source")
			if err != nil {
				return err
			}
			target, err := resolveFolder(args, 1, settings.TargetFolder, "target")
			if err != nil {
				return err
			}

			if flags.maxJobs >= 0 {
				settings.MaxConcurrentJobs = flags.maxJobs
			}

			return runCopy(ctx, opts, settings, source, target, flags)
		},
	}

	cmd.Flags().StringArrayVar(&flags.dates, "date", nil, "date group to copy (YYYY-MM-DD), repeatable; defaults to every group")
	cmd.Flags().StringVar(&flags.label, "label", "", "folder name for the copied files, only with a single --date")
	cmd.Flags().IntVar(&flags.maxJobs, "max-jobs", -1, "cap on concurrently running jobs, 0 means no cap (defaults to the settings file)")

	return cmd
}

// 🚚 runCopy scans, submits one job per date group and waits for all of them
func runCopy(ctx context.Context, opts *rootOpts, settings *config.Settings, source, target string, flags *copyFlags) error {
	logger := zerolog.Ctx(ctx)
	user := NewUserLogger(ctx)

	res, err := scan.Scan(ctx, source, scanOptions(ctx, settings))
	if err != nil {
		return errors.Errorf("scanning %s: %w", source, err)
	}

	dates, err := selectDates(res, flags.dates)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		user.LogValidation(false, fmt.Sprintf("No camera files found in %s", source), nil)
		return nil
	}
	if flags.label != "" && len(dates) != 1 {
		return errors.Errorf("--label needs exactly one date group, %d selected", len(dates))
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := log.NewWithLogger(opts.console, *logger)
	tracker := status.New(logger)
	worker := copyjob.NewWorker(ctx, copyjob.Options{
		Notifier:      copyjob.NewMultiNotifier(console, tracker),
		MaxConcurrent: int64(settings.MaxConcurrentJobs),
	})

	console.Header(fmt.Sprintf("copying %d date groups from %s", len(dates), source))

	reqs := make([]copyjob.Request, 0, len(dates))
	for _, date := range dates {
		label := date
		if flags.label != "" {
			label = flags.label
		}
		reqs = append(reqs, copyjob.Request{
			Files:      res.Files(date),
			TargetRoot: target,
			Label:      label,
		})
	}

	order, err := submitAll(ctx, worker, reqs)
	if err != nil {
		console.Errorf("%v", err)
		return err
	}

	ids := make(map[copyjob.ID]string, len(order))
	for i, id := range order {
		ids[id] = dates[i]
		if snap, err := worker.Status(id); err == nil {
			tracker.Seed(snap)
		}
	}

	if prune := settings.PruneDuration(); prune > 0 {
		pruneCtx, cancelPrune := context.WithCancel(ctx)
		defer cancelPrune()
		go worker.RunPruner(pruneCtx, max(prune/2, time.Second), prune)
	}

	waitCtx, cancelWait := context.WithCancel(ctx)
	defer cancelWait()
	go func() {
		select {
		case <-sigCtx.Done():
			if ctx.Err() == nil {
				n := worker.CancelAll()
				console.Warningf("interrupted, cancelling %d jobs", n)
			}
		case <-waitCtx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(waitCtx)
	for _, id := range order {
		id := id
		g.Go(func() error {
			snap, err := worker.Wait(gctx, id)
			if errors.Is(err, copyjob.ErrNotFound) {
				// already pruned, the tracker has its final row
				return nil
			}
			if err != nil {
				return err
			}
			if snap.State == copyjob.StateCompleted {
				logger.Debug().Str("job", string(id)).Str("date", ids[id]).Msg("date group copied")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Errorf("waiting for jobs: %w", err)
	}
	cancelWait()

	for _, row := range tracker.Rows() {
		if row.State == copyjob.StateCompleted {
			res.Remove(ids[row.ID])
		}
	}

	console.LogNewline()
	if err := user.LogSummary(tracker.Rows()); err != nil {
		logger.Debug().Err(err).Msg("rendering summary")
	}

	if abs, err := filepath.Abs(source); err == nil {
		settings.SourceFolder = abs
	}
	if abs, err := filepath.Abs(target); err == nil {
		settings.TargetFolder = abs
	}
	if err := settings.Save(ctx, opts.settingsFile); err != nil {
		user.LogValidation(false, "Could not remember folders", err)
	}

	totals := tracker.Totals()
	if remaining := len(res.Dates()); remaining > 0 {
		console.Infof("%d date groups were not copied", remaining)
	}
	if totals.Failed > 0 {
		console.Errorf("%d of %d jobs failed", totals.Failed, totals.Jobs)
		return errors.Errorf("%d of %d jobs failed", totals.Failed, totals.Jobs)
	}
	if totals.Cancelled > 0 {
		console.Warningf("%d of %d jobs cancelled", totals.Cancelled, totals.Jobs)
		return nil
	}

	console.Successf("Copied %d files in %d jobs", totals.Files, totals.Jobs)
	return nil
}

// submitAll submits every request in order. If one is rejected, the jobs
// already submitted are cancelled and waited for before the error returns.
func submitAll(ctx context.Context, worker *copyjob.Worker, reqs []copyjob.Request) ([]copyjob.ID, error) {
	order := make([]copyjob.ID, 0, len(reqs))
	for _, req := range reqs {
		id, err := worker.Submit(ctx, req)
		if err != nil {
			worker.CancelAll()
			for _, prev := range order {
				if _, werr := worker.Wait(ctx, prev); werr != nil && !errors.Is(werr, copyjob.ErrNotFound) {
					zerolog.Ctx(ctx).Debug().Err(werr).Str("job", string(prev)).Msg("waiting for cancelled job")
				}
			}
			return nil, errors.Errorf("submitting %s: %w", req.Label, err)
		}
		order = append(order, id)
	}
	return order, nil
}

// selectDates returns the requested date groups, or every group when none
// were requested
func selectDates(res *scan.Result, requested []string) ([]string, error) {
	all := res.Dates()
	if len(requested) == 0 {
		return all, nil
	}

	var out []string
	for _, d := range requested {
		if !slices.Contains(all, d) {
			return nil, errors.Errorf("no files dated %s in %s", d, res.Root)
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out, nil
}
