// Package trace reads access-log traces into events.
//
// One event per line, tab separated:
//
//	ts	size	bytes_out	cache_key	[customer_id	[url	[status]]]
//
// status is "TEXT/CODE". Blank lines and lines starting with '#' are ignored.
package trace

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Borislavv/go-ash-sim/model"
)

const maxLineBytes = 1 << 20

var ErrMalformedLine = errors.New("malformed trace line")

// Reader yields events of a trace and skips malformed lines.
type Reader struct {
	sc      *bufio.Scanner
	logger  *slog.Logger
	line    int
	skipped uint64
	ev      model.Event
}

func NewReader(r io.Reader, logger *slog.Logger) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxLineBytes)
	return &Reader{sc: sc, logger: logger}
}

// Next advances to the next event. It returns false at the end of input or on
// a read error, see Err.
func (r *Reader) Next() bool {
	for r.sc.Scan() {
		r.line++
		text := r.sc.Text()
		if s := strings.TrimSpace(text); s == "" || s[0] == '#' {
			continue
		}
		ev, err := Parse(text)
		if err != nil {
			r.skipped++
			r.logger.Warn("skip trace line", "line", r.line, "err", err)
			continue
		}
		r.ev = ev
		return true
	}
	return false
}

// Event returns the event read by the last successful Next.
func (r *Reader) Event() model.Event { return r.ev }

func (r *Reader) Err() error { return r.sc.Err() }

// Skipped counts malformed lines so far.
func (r *Reader) Skipped() uint64 { return r.skipped }

// Lines counts every line read, including skipped ones.
func (r *Reader) Lines() int { return r.line }

// Parse decodes one trace line. The event is normalized.
func Parse(line string) (model.Event, error) {
	f := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(f) < 4 {
		return model.Event{}, fmt.Errorf("%d fields: %w", len(f), ErrMalformedLine)
	}

	ts, err := strconv.ParseInt(f[0], 10, 64)
	if err != nil {
		return model.Event{}, fmt.Errorf("timestamp: %w: %w", ErrMalformedLine, err)
	}
	size, err := strconv.ParseUint(f[1], 10, 64)
	if err != nil {
		return model.Event{}, fmt.Errorf("size: %w: %w", ErrMalformedLine, err)
	}
	out, err := strconv.ParseUint(f[2], 10, 64)
	if err != nil {
		return model.Event{}, fmt.Errorf("bytes_out: %w: %w", ErrMalformedLine, err)
	}
	if f[3] == "" {
		return model.Event{}, fmt.Errorf("empty cache key: %w", ErrMalformedLine)
	}

	ev := model.Event{
		Timestamp: ts,
		Size:      size,
		BytesOut:  out,
		CacheKey:  f[3],
		Line:      line,
	}
	if len(f) > 4 {
		ev.CustomerID = f[4]
	}
	if len(f) > 5 {
		ev.URL = f[5]
	}
	if len(f) > 6 {
		if ev.Status, err = model.ParseStatus(f[6]); err != nil {
			return model.Event{}, fmt.Errorf("%w: %w", ErrMalformedLine, err)
		}
	}

	ev.Normalize()
	if ev.Size == 0 {
		return model.Event{}, fmt.Errorf("zero size: %w", ErrMalformedLine)
	}
	return ev, nil
}

// Open opens a trace file, gunzipping it when the name ends with ".gz".
// "-" is stdin.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("gunzip trace %s: %w", path, err)
	}
	return &gzipFile{Reader: zr, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	return errors.Join(g.Reader.Close(), g.f.Close())
}
