package ifconfig

import (
	"net"
	"os"
	"strconv"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// openFDs counts the open file descriptors of the test process.
func openFDs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	return len(entries)
}

func TestRequestLayouts(t *testing.T) {
	assert := assert.New(t)

	// struct in6_ifreq
	assert.Equal(uintptr(24), unsafe.Sizeof(in6Ifreq{}))
	assert.Equal(uintptr(16), unsafe.Offsetof(in6Ifreq{}.Prefixlen))
	assert.Equal(uintptr(20), unsafe.Offsetof(in6Ifreq{}.Ifindex))

	// struct ifreq
	assert.Equal(uintptr(40), unsafe.Sizeof(ifreqHwaddr{}))
	assert.Equal(uintptr(unix.IFNAMSIZ), unsafe.Offsetof(ifreqHwaddr{}.Hwaddr))
}

func TestCheckName(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(CheckName(""))
	assert.NoError(CheckName("tun0"))
	assert.NoError(CheckName("abcdefghijklmno")) // 15 bytes still fits
	// 16 bytes leave no room for the terminator
	assert.ErrorIs(CheckName("abcdefghijklmnop"), ErrNameTooLong)
	assert.ErrorIs(CheckName("averylonginterfacename"), ErrNameTooLong)
}

func TestLongNameRejectedBeforeSocket(t *testing.T) {
	assert := assert.New(t)

	long := "averylonginterfacename"
	before := openFDs(t)

	assert.ErrorIs(Up(long), ErrNameTooLong)
	assert.ErrorIs(SetIPv4Addr(long, net.ParseIP("192.0.2.1")), ErrNameTooLong)
	assert.ErrorIs(SetIPv6Addr(long, net.ParseIP("2001:db8::1"), 64), ErrNameTooLong)
	assert.ErrorIs(SetMAC(long, net.HardwareAddr{2, 0, 0, 0, 0, 1}), ErrNameTooLong)
	assert.ErrorIs(SetMTU(long, 1280), ErrNameTooLong)
	_, err := Flags(long)
	assert.ErrorIs(err, ErrNameTooLong)
	_, err = GetMTU(long)
	assert.ErrorIs(err, ErrNameTooLong)
	_, err = InterfaceIndex(long)
	assert.ErrorIs(err, ErrNameTooLong)

	assert.Equal(before, openFDs(t))
}

func TestUpMissingInterface(t *testing.T) {
	assert := assert.New(t)

	before := openFDs(t)
	err := Up("nonexistent0")
	after := openFDs(t)

	var cfgErr *ConfigError
	assert.ErrorAs(err, &cfgErr)
	assert.Equal("SIOCGIFFLAGS", cfgErr.Op)
	assert.Equal("nonexistent0", cfgErr.Name)
	assert.ErrorIs(err, unix.ENODEV)
	assert.Equal(before, after)
}

func TestUpLoopback(t *testing.T) {
	assert := assert.New(t)

	fl, err := Flags("lo")
	require.NoError(t, err)
	if fl&unix.IFF_UP == 0 || fl&unix.IFF_RUNNING == 0 {
		t.Skip("loopback is down")
	}

	// both flags are set, so Up takes the no-write path and needs no
	// privileges; a second call must behave the same
	assert.NoError(Up("lo"))
	assert.NoError(Up("lo"))
}

func TestFlagsLoopback(t *testing.T) {
	assert := assert.New(t)

	fl, err := Flags("lo")
	assert.NoError(err)
	assert.NotZero(fl & unix.IFF_LOOPBACK)
}

func TestInterfaceIndexLoopback(t *testing.T) {
	assert := assert.New(t)

	lo, err := net.InterfaceByName("lo")
	require.NoError(t, err)

	index, err := InterfaceIndex("lo")
	if errors.Is(err, unix.EAFNOSUPPORT) {
		t.Skip("IPv6 support unavailable")
	}
	assert.NoError(err)
	assert.Equal(int32(lo.Index), index)
}

func TestControlSocketRelease(t *testing.T) {
	assert := assert.New(t)

	before := openFDs(t)
	_, err := Flags("lo")
	assert.NoError(err)
	_ = SetIPv4Addr("nonexistent0", net.ParseIP("192.0.2.1"))
	_, _ = GetMTU("nonexistent0")
	assert.Equal(before, openFDs(t))
}

func TestAddrFamilyValidation(t *testing.T) {
	assert := assert.New(t)

	assert.Error(SetIPv4Addr("lo", net.ParseIP("2001:db8::1")))
	assert.Error(SetIPv6Addr("lo", net.ParseIP("192.0.2.1"), 24))
	assert.Error(SetMAC("lo", net.HardwareAddr{0x02, 0x00, 0x00}))
	assert.Error(SetMTU("lo", 0))
}

func TestSetMTUBounds(t *testing.T) {
	assert := assert.New(t)

	before := openFDs(t)
	assert.Error(SetMTU("lo", 0))
	assert.Error(SetMTU("lo", -1))

	if strconv.IntSize == 64 {
		// must not wrap to 1400 in the 32-bit ifr_mtu field
		one := int64(1)
		assert.Error(SetMTU("lo", int(one<<32)+1400))
	}
	assert.Equal(before, openFDs(t))
}

func TestGetMTULoopback(t *testing.T) {
	assert := assert.New(t)

	lo, err := net.InterfaceByName("lo")
	require.NoError(t, err)

	mtu, err := GetMTU("lo")
	assert.NoError(err)
	assert.Equal(lo.MTU, mtu)
}

func TestStatsLoopback(t *testing.T) {
	assert := assert.New(t)

	stats, err := Stats("lo")
	if err != nil {
		t.Skipf("netlink unavailable: %v", err)
	}
	assert.NotNil(stats)

	_, err = Stats("nonexistent0")
	assert.Error(err)
}
