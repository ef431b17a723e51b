package main

import (
	"net"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/digineo/tuntap/tuntap"
)

type address struct {
	ip        net.IP
	prefixlen uint8
}

type config struct {
	Kind      string   `toml:"kind"`
	Name      string   `toml:"name"`
	Device    string   `toml:"device"`
	MTU       int      `toml:"mtu"`
	Persist   bool     `toml:"persist"`
	MAC       string   `toml:"mac"`
	Addresses []string `toml:"addresses"`

	kind  tuntap.Kind
	mac   net.HardwareAddr
	addrs []address
}

func readConfig(fname string) (*config, error) {
	var cfg config
	if _, err := toml.DecodeFile(fname, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *config) Validate() error {
	switch c.Kind {
	case "", "tun":
		c.kind = tuntap.TUN
	case "tap":
		c.kind = tuntap.TAP
	default:
		return errors.Errorf("config.kind must be tun or tap, got %q", c.Kind)
	}

	if c.MTU < 0 || c.MTU > 65535 {
		return errors.Errorf("config.mtu out of range: %d", c.MTU)
	}

	if c.MAC != "" {
		if c.kind != tuntap.TAP {
			return errors.New("config.mac requires kind tap")
		}
		mac, err := net.ParseMAC(c.MAC)
		if err != nil {
			return errors.Wrap(err, "config.mac is invalid")
		}
		c.mac = mac
	}

	c.addrs = c.addrs[:0]
	for _, s := range c.Addresses {
		ip, ipnet, err := net.ParseCIDR(s)
		if err != nil {
			return errors.Wrapf(err, "config.addresses entry %q", s)
		}
		ones, _ := ipnet.Mask.Size()
		c.addrs = append(c.addrs, address{ip: ip, prefixlen: uint8(ones)})
	}
	return nil
}
