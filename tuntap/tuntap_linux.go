package tuntap

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/digineo/tuntap/ifconfig"
)

// DefaultDevice is the path of the TUN/TAP clone device.
const DefaultDevice = "/dev/net/tun"

// ifreq is struct ifreq with the ifr_flags union member, the request
// argument for TUNSETIFF.
type ifreq struct {
	Name  [unix.IFNAMSIZ]byte
	Flags uint16
	_     [22]byte
}

// ioctl issues a single control request on fd.
func ioctl(fd int, cmd uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), cmd, uintptr(arg)); errno != 0 {
		return errno
	}
	return nil
}

func (k Kind) flags() uint16 {
	if k == TAP {
		return unix.IFF_TAP | unix.IFF_NO_PI
	}
	return unix.IFF_TUN | unix.IFF_NO_PI
}

// Interface is an open TUN or TAP interface.
type Interface struct {
	file *os.File
	kind Kind
	mtu  int
	name [unix.IFNAMSIZ]byte // as assigned by the kernel
}

// New creates the interface described by cfg and brings it up. The
// kernel may pick another name than the requested one, see Name.
func New(cfg Config) (*Interface, error) {
	if err := ifconfig.CheckName(cfg.Name); err != nil {
		return nil, err
	}
	device := cfg.Device
	if device == "" {
		device = DefaultDevice
	}
	mtu := cfg.MTU
	if mtu == 0 {
		mtu = DefaultMTU
	}

	fd, err := unix.Open(device, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &OpenError{Device: device, Err: err}
	}

	req := ifreq{Flags: cfg.Kind.flags()}
	copy(req.Name[:], cfg.Name)
	if err := ioctl(fd, unix.TUNSETIFF, unsafe.Pointer(&req)); err != nil {
		unix.Close(fd)
		return nil, &ifconfig.ConfigError{Op: "TUNSETIFF", Name: cfg.Name, Err: err}
	}
	if cfg.Persist {
		if err := unix.IoctlSetInt(fd, unix.TUNSETPERSIST, 1); err != nil {
			unix.Close(fd)
			return nil, &ifconfig.ConfigError{Op: "TUNSETPERSIST", Name: cfg.Name, Err: err}
		}
	}

	ifc := &Interface{
		file: os.NewFile(uintptr(fd), device),
		kind: cfg.Kind,
		mtu:  mtu,
		name: req.Name,
	}
	name, err := ifc.Name()
	if err != nil {
		ifc.file.Close()
		return nil, err
	}
	if err := ifconfig.Up(name); err != nil {
		if cerr := ifc.file.Close(); cerr != nil {
			logger.Errorf("closing %s after failed bring-up: %v", device, cerr)
		}
		return nil, err
	}

	logger.Infof("created %s interface %s", ifc.kind, name)
	return ifc, nil
}

// Name returns the interface name assigned by the kernel. It may
// differ from the requested name.
func (ifc *Interface) Name() (string, error) {
	i := bytes.IndexByte(ifc.name[:], 0)
	if i < 0 {
		return "", ErrInvalidName
	}
	return string(ifc.name[:i]), nil
}

// Kind returns the interface type.
func (ifc *Interface) Kind() Kind { return ifc.kind }

// MTU returns the read buffer contract of the interface.
func (ifc *Interface) MTU() int { return ifc.mtu }

// File exposes the underlying device file.
func (ifc *Interface) File() *os.File { return ifc.file }

func (ifc *Interface) String() string {
	name, err := ifc.Name()
	if err != nil {
		name = "?"
	}
	return fmt.Sprintf("%s/%s", ifc.kind, name)
}

// Up brings the interface up. New already does this; it is only
// needed after the interface has been taken down externally.
func (ifc *Interface) Up() error {
	name, err := ifc.Name()
	if err != nil {
		return err
	}
	return ifconfig.Up(name)
}

// AddAddress assigns an IP address to the interface. prefixlen is
// only used for IPv6.
func (ifc *Interface) AddAddress(addr net.IP, prefixlen uint8) error {
	name, err := ifc.Name()
	if err != nil {
		return err
	}
	return ifconfig.SetAddr(name, addr, prefixlen)
}

// SetMAC sets the link-layer address. Only TAP interfaces accept one.
func (ifc *Interface) SetMAC(mac net.HardwareAddr) error {
	name, err := ifc.Name()
	if err != nil {
		return err
	}
	return ifconfig.SetMAC(name, mac)
}

// Read reads one packet into p, blocking until one arrives. p must
// hold at least MTU bytes.
func (ifc *Interface) Read(p []byte) (int, error) {
	if len(p) < ifc.mtu {
		return 0, errors.Wrapf(ErrBufferTooSmall, "len %d, MTU %d", len(p), ifc.mtu)
	}
	return ifc.file.Read(p)
}

// Write writes one packet. Short writes are retried until every byte
// has been handed to the kernel.
func (ifc *Interface) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := ifc.file.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Close closes the device descriptor. Non-persistent interfaces are
// torn down by the kernel.
func (ifc *Interface) Close() error {
	return ifc.file.Close()
}
