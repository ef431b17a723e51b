package ifconfig

import (
	"net"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsIPv4(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsIPv4(net.ParseIP("192.0.2.1")))
	assert.True(IsIPv4(net.IP{192, 0, 2, 1}))
	assert.True(IsIPv4(net.ParseIP("::ffff:192.0.2.1")))
	assert.False(IsIPv4(net.ParseIP("2001:db8::1")))
	assert.False(IsIPv4(net.ParseIP("::1")))
	assert.False(IsIPv4(nil))
}

func TestConfigError(t *testing.T) {
	assert := assert.New(t)

	cause := errors.New("no such device")
	err := &ConfigError{Op: "SIOCGIFFLAGS", Name: "tun0", Err: cause}
	assert.Equal("SIOCGIFFLAGS on tun0: no such device", err.Error())
	assert.Equal(cause, errors.Unwrap(err))

	// socket creation failures carry no interface name
	err = &ConfigError{Op: "socket", Err: cause}
	assert.Equal("socket: no such device", err.Error())
}
