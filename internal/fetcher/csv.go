package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune            // default ','
	Encoding   string          // WHATWG charset label, e.g. "windows-1252"; default utf-8
	HasHeader  bool            // if true, first row is skipped but sent to HeaderCh
	HeaderCh   chan<- []string // optional: receives the header row
	Comment    rune            // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// decodeReader wraps r with a decoder for the named charset.
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(r), nil
}

// StreamCSV reads delimited text and sends rows to a channel.
// Caller must consume the returned row channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		src, err := decodeReader(r, opts.Encoding)
		if err != nil {
			errCh <- err
			return
		}

		reader := csv.NewReader(src)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if first {
				record[0] = strings.TrimPrefix(record[0], "\ufeff")
			}
			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			if first && opts.HasHeader {
				first = false
				if opts.HeaderCh != nil {
					select {
					case opts.HeaderCh <- record:
					case <-ctx.Done():
						errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled sending header")
						return
					}
				}
				continue
			}
			first = false

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSV collects a stream into a table. The first row is the header; an
// empty input yields an empty table.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) (*Table, error) {
	headerCh := make(chan []string, 1)
	opts.HasHeader = true
	opts.HeaderCh = headerCh

	rowCh, errCh := StreamCSV(ctx, r, opts)
	t := &Table{}
	for row := range rowCh {
		t.Rows = append(t.Rows, row)
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	select {
	case t.Header = <-headerCh:
	default:
	}
	return t, nil
}
