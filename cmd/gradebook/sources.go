// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdiddy/gradebook/internal/container"
	"github.com/pdiddy/gradebook/internal/convert"
	"github.com/pdiddy/gradebook/internal/ingest"
	"github.com/pdiddy/gradebook/internal/metrics"
	"github.com/pdiddy/gradebook/internal/report"
	"github.com/pdiddy/gradebook/pkg/types"
)

// loader ingests score documents for a command. The document converter is
// only set up when a PDF or Word source is actually loaded.
type loader struct {
	cfg     types.Config
	out     io.Writer
	metrics *metrics.Manager
	conv    convert.Converter
}

func newLoader(cfg types.Config, out io.Writer, m *metrics.Manager) *loader {
	return &loader{cfg: cfg, out: out, metrics: m}
}

// load ingests path and prints its row summary. A failed outcome is
// returned as an error naming the file.
func (l *loader) load(ctx context.Context, path, label string, opts ingest.Options) (ingest.Outcome, error) {
	src := ingest.Source{Path: path, Label: label}
	format, err := ingest.DetectFormat(path)
	if err != nil {
		return ingest.Outcome{Source: src, Err: err}, err
	}
	src.Format = format

	if format == ingest.FormatPDF || format == ingest.FormatWord {
		conv, err := l.converter(ctx)
		if err != nil {
			return ingest.Outcome{Source: src, Err: err}, err
		}
		opts.Converter = conv
		opts.CacheDir = l.cfg.Conversion.CacheDir
		opts.Progress = l.out
	}
	if opts.ScoreHeader == "" {
		opts.ScoreHeader = l.cfg.Rank.ScoreHeader
	}

	o := ingest.Load(ctx, src, opts)
	report.Ingest(l.out, o)
	slog.Debug("ingested", "source", src.Path, "format", src.Format,
		"rows", o.Stats.Rows, "accepted", o.Stats.Accepted, "skipped", o.Stats.Skipped)
	if o.Failed() {
		return o, fmt.Errorf("loading %s: %w", label, o.Err)
	}
	if l.metrics != nil {
		l.metrics.RecordIngest(label, o.Stats.Accepted, o.Stats.Skipped, o.Stats.Duplicates, o.Stats.Missing)
	}
	return o, nil
}

func (l *loader) converter(ctx context.Context) (convert.Converter, error) {
	if l.conv != nil {
		return l.conv, nil
	}
	conv, err := newDocumentConverter(ctx, l.cfg.Conversion)
	if err != nil {
		return nil, err
	}
	l.conv = conv
	return conv, nil
}

func newDocumentConverter(ctx context.Context, cfg types.ConversionConfig) (convert.Converter, error) {
	rt, err := container.DetectRuntime(ctx, cfg.Runtime)
	if err != nil {
		return nil, fmt.Errorf("PDF and Word sources need a container runtime: %w", err)
	}
	slog.Debug("using container runtime", "runtime", rt.Name(), "image", cfg.Image)
	return convert.NewMarkitdownConverter(ctx, rt, cfg.Image)
}
