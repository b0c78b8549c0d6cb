//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package bloom

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

const (
	lockRead  int16 = unix.F_RDLCK
	lockWrite int16 = unix.F_WRLCK
	lockNone  int16 = unix.F_UNLCK
)

// lock places, converts or releases a whole-file POSIX record lock, blocking
// until it is granted. A read lock is converted in place to a write lock.
func lock(f *os.File, typ int16) error {
	lk := unix.Flock_t{Type: typ, Whence: io.SeekStart}
	for {
		err := unix.FcntlFlock(f.Fd(), unix.F_SETLKW, &lk)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
