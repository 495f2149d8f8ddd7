// Package pipeline runs one full sync: feed URL → fetch → parse → shifts →
// paid dates → reports on disk.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"shiftsync/internal/annotation"
	"shiftsync/internal/config"
	"shiftsync/internal/feed"
	"shiftsync/internal/ics"
	appLog "shiftsync/internal/log"
	"shiftsync/internal/model"
	"shiftsync/internal/report"
	"shiftsync/internal/shift"
)

// SuccessMessage is printed after both reports have been written.
const SuccessMessage = "Successfully synced with iCal!"

// Options wires a sync run.
type Options struct {
	Source  feed.Source
	Fetcher *ics.Fetcher
	Parser  *annotation.Parser

	// Location is the reference zone for "today" and for rendering.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time

	ShiftsPath string
	HourlyPath string

	// Out receives the success message. Defaults to os.Stdout.
	Out io.Writer
}

// OptionsFromConfig builds Options from cfg, reading the URL from src.
func OptionsFromConfig(cfg *config.Config, src feed.Source) (Options, error) {
	if cfg == nil {
		return Options{}, errors.New("config is nil")
	}
	cfg.Normalize()

	loc, err := cfg.Location()
	if err != nil {
		return Options{}, err
	}

	return Options{
		Source:     src,
		Fetcher:    ics.NewFetcher(cfg.CacheDir, nil),
		Parser:     annotation.NewParser(cfg.KnownKeys...),
		Location:   loc,
		ShiftsPath: cfg.ShiftsCSV,
		HourlyPath: cfg.HourlyCSV,
	}, nil
}

// Result is what a run produced.
type Result struct {
	Shifts  []model.Shift
	Summary []report.SummaryRow
}

// Transform is the in-memory part of a sync: it normalizes events, drops those
// after today, orders them and resolves paid dates.
func Transform(events []model.RawEvent, parser *annotation.Parser, loc *time.Location, today model.Date) (Result, error) {
	n := shift.NewNormalizer(parser, loc)

	shifts, err := n.NormalizeAll(events)
	if err != nil {
		return Result{}, err
	}

	shifts = shift.FilterAndSort(shifts, today)
	shift.Propagate(shifts, nil)

	return Result{
		Shifts:  shifts,
		Summary: report.BuildSummary(shifts),
	}, nil
}

// Run performs one sync. Nothing is written unless the feed was fetched and
// parsed successfully, and neither report is replaced unless both could be
// staged on disk.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Source == nil {
		return Result{}, errors.New("no feed source configured")
	}
	if opts.Fetcher == nil {
		opts.Fetcher = ics.NewFetcher("", nil)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ShiftsPath == "" {
		opts.ShiftsPath = config.DefaultShiftsCSV
	}
	if opts.HourlyPath == "" {
		opts.HourlyPath = config.DefaultHourlyCSV
	}

	url, err := opts.Source.URL(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("resolve feed URL: %w", err)
	}

	fetched, err := opts.Fetcher.Fetch(ctx, url)
	if err != nil {
		return Result{}, err
	}

	events, err := ics.ParseFeed(fetched.Body, opts.Location)
	if err != nil {
		return Result{}, err
	}

	today := shift.Today(opts.Now(), opts.Location)
	res, err := Transform(events, opts.Parser, opts.Location, today)
	if err != nil {
		return Result{}, err
	}

	var ledger, hourly bytes.Buffer
	if err := report.WriteLedger(&ledger, res.Shifts, opts.Location); err != nil {
		return Result{}, fmt.Errorf("render ledger: %w", err)
	}
	if err := report.WriteSummary(&hourly, res.Summary); err != nil {
		return Result{}, fmt.Errorf("render summary: %w", err)
	}

	if err := writeReports(map[string][]byte{
		opts.ShiftsPath: ledger.Bytes(),
		opts.HourlyPath: hourly.Bytes(),
	}); err != nil {
		return Result{}, err
	}

	appLog.Info("sync complete",
		"events", len(events),
		"shifts", len(res.Shifts),
		"groups", len(res.Summary),
		"from_cache", fetched.FromCache,
	)
	fmt.Fprintln(opts.Out, SuccessMessage)

	return res, nil
}

// writeReports stages every file before renaming any of them, so a failure
// while writing one report leaves all previous reports in place.
func writeReports(files map[string][]byte) error {
	staged := make([]*config.StagedFile, 0, len(files))
	defer func() {
		for _, f := range staged {
			f.Discard()
		}
	}()

	for path, data := range files {
		f, err := config.StageFile(path, data, 0o644)
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		staged = append(staged, f)
	}

	for _, f := range staged {
		if err := f.Commit(); err != nil {
			return fmt.Errorf("commit report: %w", err)
		}
	}
	return nil
}
