// Package tuntap creates TUN and TAP network interfaces through the
// Linux clone device and configures them with socket ioctls.
package tuntap

import "fmt"

// DefaultMTU is the read buffer contract used when Config.MTU is left
// zero: Read requires buffers of at least this many bytes.
const DefaultMTU = 1500

// Kind selects the interface type.
type Kind int

const (
	// TUN interfaces carry IP packets without additional framing.
	TUN Kind = iota
	// TAP interfaces carry Ethernet frames.
	TAP
)

func (k Kind) String() string {
	switch k {
	case TUN:
		return "tun"
	case TAP:
		return "tap"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Config describes the interface to create.
type Config struct {
	Kind    Kind   // TUN or TAP
	Name    string // requested name; empty lets the kernel pick one
	Device  string // clone device path; DefaultDevice if empty
	MTU     int    // read buffer contract; DefaultMTU if zero
	Persist bool   // keep the interface after the descriptor closes
}
