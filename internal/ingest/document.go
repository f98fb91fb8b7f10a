// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/gradebook/internal/convert"
)

// DefaultCacheDir holds converted Markdown when Options.CacheDir is empty.
const DefaultCacheDir = ".gradebook/markdown"

// readDocument converts a PDF or Word document to Markdown through the
// configured converter and parses the cached result.
func readDocument(ctx context.Context, path string, b *builder, opts Options) error {
	if opts.Converter == nil {
		return fmt.Errorf("%w for %s", ErrNoConverter, filepath.Base(path))
	}
	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	mdPath, _, err := convert.ConvertDocument(ctx, opts.Converter, path, cacheDir, progress)
	if err != nil {
		return fmt.Errorf("converting %s: %w", path, err)
	}
	_, body, err := convert.ReadCached(mdPath)
	if err != nil {
		return err
	}
	return parseMarkdown(body, b)
}
