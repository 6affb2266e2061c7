// Package fetcher loads tabular input (CSV or XLSX, local or over HTTP)
// into header/row tables.
package fetcher

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher downloads remote sources.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Options configures ReadTable.
type Options struct {
	Delimiter rune    // CSV field separator; default ','
	Encoding  string  // CSV character set, any WHATWG label; default utf-8
	Sheet     string  // XLSX sheet name; default first sheet
	Fetcher   Fetcher // used for http(s) sources; default NewHTTPFetcher
}

// IsRemote reports whether src is an http(s) URL.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// ReadTable loads src, a local path or http(s) URL. Files ending in .xlsx
// are read as spreadsheets; everything else is read as delimited text. The
// first row is the header.
func ReadTable(ctx context.Context, src string, opts Options) (*Table, error) {
	log := zap.L().With(zap.String("source", src))

	var r io.Reader
	if IsRemote(src) {
		f := opts.Fetcher
		if f == nil {
			f = NewHTTPFetcher(HTTPOptions{})
		}
		body, err := f.Download(ctx, src)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: download %s", src)
		}
		defer body.Close() //nolint:errcheck
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: read %s", src)
		}
		r = bytes.NewReader(data)
	} else {
		file, err := os.Open(src)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", src)
		}
		defer file.Close() //nolint:errcheck
		r = file
	}

	var (
		t   *Table
		err error
	)
	if isXLSX(src) {
		data, rerr := io.ReadAll(r)
		if rerr != nil {
			return nil, eris.Wrapf(rerr, "fetcher: read %s", src)
		}
		t, err = ReadXLSX(data, XLSXOptions{SheetName: opts.Sheet})
	} else {
		t, err = ReadCSV(ctx, r, CSVOptions{
			Delimiter:  delimiterFor(src, opts.Delimiter),
			Encoding:   opts.Encoding,
			LazyQuotes: true,
			TrimSpace:  true,
		})
	}
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse %s", src)
	}

	log.Debug("loaded table", zap.Int("rows", t.Len()), zap.Int("columns", len(t.Header)))
	return t, nil
}

func isXLSX(src string) bool {
	return strings.EqualFold(filepath.Ext(stripQuery(src)), ".xlsx")
}

func delimiterFor(src string, d rune) rune {
	if d != 0 {
		return d
	}
	if strings.EqualFold(filepath.Ext(stripQuery(src)), ".tsv") {
		return '\t'
	}
	return ','
}

func stripQuery(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		return src[:i]
	}
	return src
}
