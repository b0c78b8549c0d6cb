package bloom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
)

var (
	ErrLockFailed      = errors.New("bloom snapshot lock failed")
	ErrLockUnsupported = errors.New("record locks are not supported on this platform")
)

// Load builds a filter and fills it from the snapshot at path. A missing,
// unreadable or differently sized snapshot leaves the filter empty.
func Load(path string, opts Options) *Filter {
	f := New(opts)
	if path == "" {
		return f
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info().Str("file", path).Msg("[bloom] no snapshot, starting empty")
		} else {
			log.Warn().Err(err).Str("file", path).Msg("[bloom] open snapshot error, starting empty")
		}
		return f
	}
	defer func() { _ = file.Close() }()

	if err = lock(file, lockRead); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("[bloom] read lock error, starting empty")
		return f
	}
	defer func() { _ = lock(file, lockNone) }()

	snapshot := make([]byte, len(f.bitmap))
	if _, err = io.ReadFull(file, snapshot); err != nil {
		log.Warn().Err(err).Str("file", path).Int("want_bytes", len(snapshot)).Msg("[bloom] short snapshot, starting empty")
		return f
	}
	f.restore(snapshot)

	st := f.Stats()
	log.Info().
		Str("file", path).
		Uint64("set_bits", st.SetBits).
		Float64("fill_percentage", st.FillPercentage).
		Msg("[bloom] snapshot loaded")
	return f
}

// Save merges the filter into the snapshot at path.
//
// A new file receives the bitmap under a write lock. An existing file is read
// under a read lock, OR-merged with the bitmap, and rewritten after the lock is
// converted to a write lock, so concurrent writers only ever add bits. A lock
// that cannot be taken skips the flush and returns ErrLockFailed.
func (f *Filter) Save(path string) error {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return f.create(path)
	}
	if err != nil {
		return fmt.Errorf("open bloom snapshot %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if err = lock(file, lockRead); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("[bloom] read lock error, flush skipped")
		return fmt.Errorf("%w: read lock %s: %w", ErrLockFailed, path, err)
	}
	defer func() { _ = lock(file, lockNone) }()

	merged := make([]byte, len(f.bitmap))
	n, err := io.ReadFull(file, merged)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		log.Warn().Str("file", path).Int("read_bytes", n).Int("want_bytes", len(merged)).Msg("[bloom] short snapshot, merging over zeroes")
	default:
		return fmt.Errorf("read bloom snapshot %s: %w", path, err)
	}
	orMerge(merged, f.bitmap)

	if err = lock(file, lockWrite); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("[bloom] write lock error, flush skipped")
		return fmt.Errorf("%w: write lock %s: %w", ErrLockFailed, path, err)
	}
	if _, err = file.WriteAt(merged, 0); err != nil {
		return fmt.Errorf("write bloom snapshot %s: %w", path, err)
	}

	log.Debug().Str("file", path).Int("bytes", len(merged)).Msg("[bloom] snapshot merged")
	return nil
}

func (f *Filter) create(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o664)
	if err != nil {
		return fmt.Errorf("create bloom snapshot %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if err = lock(file, lockWrite); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("[bloom] write lock error, flush skipped")
		return fmt.Errorf("%w: write lock %s: %w", ErrLockFailed, path, err)
	}
	defer func() { _ = lock(file, lockNone) }()

	if _, err = file.WriteAt(f.bitmap, 0); err != nil {
		return fmt.Errorf("write bloom snapshot %s: %w", path, err)
	}

	log.Debug().Str("file", path).Int("bytes", len(f.bitmap)).Msg("[bloom] snapshot created")
	return nil
}

// orMerge ORs src into dst word by word; both slices have the same length.
func orMerge(dst, src []byte) {
	i := 0
	for ; i+8 <= len(dst); i += 8 {
		w := binary.NativeEndian.Uint64(dst[i:]) | binary.NativeEndian.Uint64(src[i:])
		binary.NativeEndian.PutUint64(dst[i:], w)
	}
	for ; i < len(dst); i++ {
		dst[i] |= src[i]
	}
}
