package ifconfig

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNameTooLong is returned when an interface name does not fit the
// fixed-size name field of a configuration request.
var ErrNameTooLong = errors.New("interface name too long")

// ConfigError is returned when the kernel rejects a configuration
// request.
type ConfigError struct {
	Op   string // failed request, e.g. "SIOCSIFADDR"
	Name string // interface name, if known
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Name, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
