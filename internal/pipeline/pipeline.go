// Package pipeline runs the two materialized passes over a calendar
// export: a staging pass that normalizes events (merge variant), builds
// the owner/category index and writes a sorted scratch file, then the
// consolidation pass that merges adjacent events into the output file.
// Two passes because the engine requires stable, fully staged input
// ordering.
package pipeline

import (
	"bufio"
	"io"
	"os"
	"time"

	"sdwcal/internal/classify"
	"sdwcal/internal/engine"
	"sdwcal/internal/log"
	"sdwcal/internal/normalize"
	"sdwcal/internal/record"
)

// Variant selects the processing mode.
type Variant int

const (
	// Expand is the index variant: group and sort events, consolidate
	// with description-tag semantics, no instant normalization.
	Expand Variant = iota
	// Merge is the merge variant: normalize exact instants to whole-day
	// local dates first, then consolidate with summary-tag semantics.
	Merge
)

// Options configures one run.
type Options struct {
	// InputPath is the export file to process.
	InputPath string
	// OutputSuffix is appended to InputPath to form the output path.
	OutputSuffix string
	// Location is the portal wall-clock zone (merge variant).
	Location *time.Location
	// Report receives the per-owner summary lines (defaults to stdout).
	Report io.Writer
	// KeepScratch leaves the staging file in place for debugging.
	KeepScratch bool
}

// Run processes the input file and returns the output path. Fatal
// errors leave any partially written output (and the scratch file) in
// place for inspection.
func Run(v Variant, opts Options) (string, error) {
	if opts.Report == nil {
		opts.Report = os.Stdout
	}
	scratchPath := opts.InputPath + ".tmp"
	outPath := opts.InputPath + opts.OutputSuffix

	if err := stagePass(v, opts.InputPath, scratchPath, opts); err != nil {
		return outPath, err
	}
	if err := consolidatePass(v, scratchPath, outPath); err != nil {
		return outPath, err
	}

	if !opts.KeepScratch {
		if err := os.Remove(scratchPath); err != nil {
			log.Warn("could not remove scratch file", "path", scratchPath, "err", err)
		}
	}
	log.Info("run completed", "input", opts.InputPath, "output", outPath)
	return outPath, nil
}

// stagePass reads the input, normalizes each event (merge variant),
// files it in the classifier index, and echoes non-event lines to the
// scratch file. At END:VCALENDAR the index dumps all events in
// owner/category/date order ahead of the closing marker, and the summary
// report goes to opts.Report.
func stagePass(v Variant, inPath, scratchPath string, opts Options) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	scratch, err := os.Create(scratchPath)
	if err != nil {
		return err
	}
	defer scratch.Close()
	w := bufio.NewWriter(scratch)

	index := classify.NewIndex()
	var norm *normalize.Normalizer
	if v == Merge {
		norm = normalize.New(opts.Location)
	}

	pumpOpts := record.PumpOptions{SkipEmptyValues: v == Merge}
	err = record.Pump(in, w, pumpOpts,
		func(ev *record.Record) error {
			if norm != nil {
				if err := norm.Apply(ev); err != nil {
					return err
				}
			}
			index.Add(ev)
			return nil
		},
		func() error {
			return index.Dump(w, opts.Report)
		})
	if err != nil {
		return err
	}
	return w.Flush()
}

// consolidatePass streams the staged file through the consolidation
// engine into the output file, flushing the accumulator when the closing
// calendar marker arrives.
func consolidatePass(v Variant, scratchPath, outPath string) error {
	in, err := os.Open(scratchPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	rules := engine.ExpandRules()
	if v == Merge {
		rules = engine.MergeRules()
	}
	eng := engine.New(rules, func(ev *record.Record) error {
		return record.WriteRecord(w, ev)
	})

	err = record.Pump(in, w, record.PumpOptions{}, eng.Feed, eng.Flush)
	if err != nil {
		return err
	}
	return w.Flush()
}
