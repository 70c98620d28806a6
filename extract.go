// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"context"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExtractOptions configures bulk plain-text extraction.
type ExtractOptions struct {
	Workers   int   // concurrent page workers; 0 picks runtime.NumCPU()
	PageRange []int // 1-based page numbers to extract; nil extracts every page
}

// ExtractWithContext concatenates the plain text of every requested page,
// fetching pages concurrently and honoring ctx cancellation.
func (r *Reader) ExtractWithContext(ctx context.Context, opts ExtractOptions) (io.Reader, error) {
	pages := r.NumPage()
	if pages == 0 {
		return emptyReader(), nil
	}

	// Concurrent page workers each pull their own chain of objects into the
	// object cache; without a cap that's unbounded growth over a big PDF.
	if r.GetCacheCapacity() <= 0 {
		cacheSize := len(opts.PageRange)
		if cacheSize == 0 {
			cacheSize = pages
		}
		cacheSize *= 10
		if cacheSize > 5000 {
			cacheSize = 5000
		}
		r.SetCacheCapacity(cacheSize)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > pages {
		workers = pages
	}

	pageList := opts.PageRange
	if pageList == nil {
		pageList = make([]int, pages)
		for i := range pageList {
			pageList[i] = i + 1
		}
	}

	results := make([]string, len(pageList))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx, pageNum := range pageList {
		idx, pageNum := idx, pageNum
		g.Go(func() error {
			text, err := r.Page(pageNum).GetPlainText(gctx, nil)
			if err != nil {
				return wrapPageError("extract text", pageNum, err)
			}
			results[idx] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf writeBuffer
	for _, text := range results {
		buf.WriteString(text)
	}
	return &buf, nil
}

// writeBuffer is an io.Reader over a sequence of strings, appended once and
// read once - cheaper than building one big string up front for large PDFs.
type writeBuffer struct {
	data   []string
	offset int
	pos    int
}

func (b *writeBuffer) WriteString(s string) {
	b.data = append(b.data, s)
}

func (b *writeBuffer) Read(p []byte) (n int, err error) {
	for b.offset < len(b.data) {
		s := b.data[b.offset]
		copied := copy(p[n:], s[b.pos:])
		n += copied
		b.pos += copied

		if b.pos >= len(s) {
			b.offset++
			b.pos = 0
		}

		if n >= len(p) {
			return n, nil
		}
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func emptyReader() io.Reader {
	return &writeBuffer{}
}
