package tuntap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("tun", TUN.String())
	assert.Equal("tap", TAP.String())
	assert.Equal("kind(7)", Kind(7).String())
}

func TestConfigDefaultsToTun(t *testing.T) {
	assert := assert.New(t)

	var cfg Config
	assert.Equal(TUN, cfg.Kind)
}
