package ifconfig

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ioctl issues a single control request on fd.
func ioctl(fd int, cmd uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), cmd, uintptr(arg)); errno != 0 {
		return errno
	}
	return nil
}

// controlSocket opens a transient datagram socket for configuration
// requests. The caller must close it.
func controlSocket(family int) (int, error) {
	fd, err := unix.Socket(family, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, &ConfigError{Op: "socket", Err: err}
	}
	return fd, nil
}

// in6Ifreq is struct in6_ifreq, the request argument for SIOCSIFADDR
// on an AF_INET6 socket.
type in6Ifreq struct {
	Addr      [16]byte
	Prefixlen uint32
	Ifindex   int32
}

// ifreqHwaddr is struct ifreq with the ifr_hwaddr union member,
// padded to the full union size.
type ifreqHwaddr struct {
	Name   [unix.IFNAMSIZ]byte
	Hwaddr unix.RawSockaddr
	_      [8]byte
}

// newIfreq validates name and wraps it in a request structure.
func newIfreq(name string) (*unix.Ifreq, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	return unix.NewIfreq(name)
}

// CheckName returns ErrNameTooLong if name cannot be encoded as a
// null-terminated interface name.
func CheckName(name string) error {
	if len(name) >= unix.IFNAMSIZ {
		return errors.Wrapf(ErrNameTooLong, "%q", name)
	}
	return nil
}
