package ifconfig

import (
	"math"
	"net"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Flags returns the active flag word of the interface.
func Flags(name string) (uint16, error) {
	ifr, err := newIfreq(name)
	if err != nil {
		return 0, err
	}

	fd, err := controlSocket(unix.AF_INET)
	if err != nil {
		return 0, err
	}
	defer unix.Close(fd)

	if err := unix.IoctlIfreq(fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		return 0, &ConfigError{Op: "SIOCGIFFLAGS", Name: name, Err: err}
	}
	return ifr.Uint16(), nil
}

// Up activates the interface. It returns without writing when both
// IFF_UP and IFF_RUNNING are already set.
func Up(name string) error {
	ifr, err := newIfreq(name)
	if err != nil {
		return err
	}

	fd, err := controlSocket(unix.AF_INET)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	if err := unix.IoctlIfreq(fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		return &ConfigError{Op: "SIOCGIFFLAGS", Name: name, Err: err}
	}
	active := ifr.Uint16()
	if active&unix.IFF_UP != 0 && active&unix.IFF_RUNNING != 0 {
		return nil
	}
	ifr.SetUint16(active | unix.IFF_UP | unix.IFF_RUNNING)
	if err := unix.IoctlIfreq(fd, unix.SIOCSIFFLAGS, ifr); err != nil {
		return &ConfigError{Op: "SIOCSIFFLAGS", Name: name, Err: err}
	}
	return nil
}

// SetAddr assigns addr to the interface, dispatching on the address
// family. prefixlen is only used for IPv6.
func SetAddr(name string, addr net.IP, prefixlen uint8) error {
	if IsIPv4(addr) {
		return SetIPv4Addr(name, addr)
	}
	return SetIPv6Addr(name, addr, prefixlen)
}

// SetIPv4Addr assigns addr as the primary IPv4 address of the
// interface. The kernel derives the netmask.
func SetIPv4Addr(name string, addr net.IP) error {
	ip4 := addr.To4()
	if ip4 == nil {
		return errors.Errorf("not an IPv4 address: %s", addr)
	}
	ifr, err := newIfreq(name)
	if err != nil {
		return err
	}
	if err := ifr.SetInet4Addr(ip4); err != nil {
		return err
	}

	fd, err := controlSocket(unix.AF_INET)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	if err := unix.IoctlIfreq(fd, unix.SIOCSIFADDR, ifr); err != nil {
		return &ConfigError{Op: "SIOCSIFADDR", Name: name, Err: err}
	}
	return nil
}

// SetIPv6Addr adds addr with the given prefix length to the
// interface.
func SetIPv6Addr(name string, addr net.IP, prefixlen uint8) error {
	ip6 := addr.To16()
	if ip6 == nil || addr.To4() != nil {
		return errors.Errorf("not an IPv6 address: %s", addr)
	}
	if prefixlen > 128 {
		return errors.Errorf("invalid prefix length %d", prefixlen)
	}
	if err := CheckName(name); err != nil {
		return err
	}

	fd, err := controlSocket(unix.AF_INET6)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	index, err := interfaceIndex(fd, name)
	if err != nil {
		return err
	}

	req := in6Ifreq{Prefixlen: uint32(prefixlen), Ifindex: index}
	copy(req.Addr[:], ip6)
	if err := ioctl(fd, unix.SIOCSIFADDR, unsafe.Pointer(&req)); err != nil {
		return &ConfigError{Op: "SIOCSIFADDR", Name: name, Err: err}
	}
	return nil
}

// SetMAC sets the link-layer address of the interface. Only TAP
// interfaces accept one.
func SetMAC(name string, mac net.HardwareAddr) error {
	if len(mac) != 6 {
		return errors.Errorf("invalid MAC address length %d", len(mac))
	}
	if err := CheckName(name); err != nil {
		return err
	}

	fd, err := controlSocket(unix.AF_INET)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	var req ifreqHwaddr
	copy(req.Name[:], name)
	req.Hwaddr.Family = unix.ARPHRD_ETHER
	for i, b := range mac {
		req.Hwaddr.Data[i] = int8(b)
	}
	if err := ioctl(fd, unix.SIOCSIFHWADDR, unsafe.Pointer(&req)); err != nil {
		return &ConfigError{Op: "SIOCSIFHWADDR", Name: name, Err: err}
	}
	return nil
}

// InterfaceIndex resolves the kernel index of the interface.
func InterfaceIndex(name string) (int32, error) {
	if err := CheckName(name); err != nil {
		return 0, err
	}

	fd, err := controlSocket(unix.AF_INET6)
	if err != nil {
		return 0, err
	}
	defer unix.Close(fd)

	return interfaceIndex(fd, name)
}

func interfaceIndex(fd int, name string) (int32, error) {
	ifr, err := newIfreq(name)
	if err != nil {
		return 0, err
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFINDEX, ifr); err != nil {
		return 0, &ConfigError{Op: "SIOCGIFINDEX", Name: name, Err: err}
	}
	return int32(ifr.Uint32()), nil
}

// GetMTU returns the configured MTU of the interface.
func GetMTU(name string) (int, error) {
	ifr, err := newIfreq(name)
	if err != nil {
		return 0, err
	}

	fd, err := controlSocket(unix.AF_INET)
	if err != nil {
		return 0, err
	}
	defer unix.Close(fd)

	if err := unix.IoctlIfreq(fd, unix.SIOCGIFMTU, ifr); err != nil {
		return 0, &ConfigError{Op: "SIOCGIFMTU", Name: name, Err: err}
	}
	return int(ifr.Uint32()), nil
}

// SetMTU changes the MTU of the interface.
func SetMTU(name string, mtu int) error {
	// ifr_mtu is a C int; anything beyond it would be truncated
	if mtu <= 0 || mtu > math.MaxInt32 {
		return errors.Errorf("invalid MTU %d", mtu)
	}
	ifr, err := newIfreq(name)
	if err != nil {
		return err
	}
	ifr.SetUint32(uint32(mtu))

	fd, err := controlSocket(unix.AF_INET)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	if err := unix.IoctlIfreq(fd, unix.SIOCSIFMTU, ifr); err != nil {
		return &ConfigError{Op: "SIOCSIFMTU", Name: name, Err: err}
	}
	return nil
}

// IfaceStats holds interface packet and byte counters.
type IfaceStats struct {
	RxPackets uint64
	TxPackets uint64
	RxBytes   uint64
	TxBytes   uint64
}

// Stats reads the interface counters.
func Stats(name string) (*IfaceStats, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return nil, errors.Wrapf(err, "stats for %s", name)
	}
	attrs := link.Attrs()
	if attrs == nil || attrs.Statistics == nil {
		return nil, errors.Errorf("no statistics for %s", name)
	}
	return &IfaceStats{
		RxPackets: attrs.Statistics.RxPackets,
		TxPackets: attrs.Statistics.TxPackets,
		RxBytes:   attrs.Statistics.RxBytes,
		TxBytes:   attrs.Statistics.TxBytes,
	}, nil
}
