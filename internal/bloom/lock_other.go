//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package bloom

import "os"

const (
	lockRead int16 = iota
	lockWrite
	lockNone
)

func lock(*os.File, int16) error {
	return ErrLockUnsupported
}
