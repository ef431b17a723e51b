package tuntap

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrBufferTooSmall is returned by Read when the destination buffer
// cannot hold a packet of the configured MTU.
var ErrBufferTooSmall = errors.New("read buffer smaller than MTU")

// ErrInvalidName is returned when the kernel-assigned name buffer
// holds no terminated string.
var ErrInvalidName = errors.New("invalid interface name")

// OpenError is returned when the clone device cannot be opened.
type OpenError struct {
	Device string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Device, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }
