package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"gvisor.dev/gvisor/pkg/tcpip/checksum"
	"gvisor.dev/gvisor/pkg/tcpip/header"

	"github.com/digineo/tuntap/ifconfig"
	"github.com/digineo/tuntap/tuntap"
)

func main() {
	var (
		name    string
		addr    string
		verbose bool
	)
	flag.StringVar(&name, "name", "", "requested interface name")
	flag.StringVar(&addr, "addr", "192.0.2.1/24", "local address in CIDR notation")
	flag.BoolVar(&verbose, "v", false, "enable verbose output")
	flag.Parse()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	tuntap.SetLogger(log.StandardLogger())

	ifc, err := tuntap.New(tuntap.Config{Kind: tuntap.TUN, Name: name})
	if err != nil {
		log.Fatalf("error creating tun device: %v", err)
	}
	defer ifc.Close()

	ifname, err := ifc.Name()
	if err != nil {
		log.Fatalf("error reading interface name: %v", err)
	}

	ip, ipnet, err := net.ParseCIDR(addr)
	if err != nil {
		log.Fatalf("invalid -addr %q: %v", addr, err)
	}
	ones, _ := ipnet.Mask.Size()
	if err := ifconfig.SetAddr(ifname, ip, uint8(ones)); err != nil {
		log.Fatalf("error assigning %s: %v", addr, err)
	}

	log.WithFields(log.Fields{"interface": ifname, "addr": addr}).
		Info("answering pings for the whole subnet")

	go respond(ifc)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	log.Infof("interrupt received: %s", <-sigs)
}

// respond turns every ICMP echo request into a reply.
func respond(ifc *tuntap.Interface) {
	buf := make([]byte, ifc.MTU())
	for {
		n, err := ifc.Read(buf)
		if err != nil {
			log.Errorf("read: %v", err)
			return
		}
		pkt := buf[:n]
		if !echoReply(pkt) {
			continue
		}
		if _, err := ifc.Write(pkt); err != nil {
			log.Errorf("write: %v", err)
		}
	}
}

// echoReply rewrites an echo request in place. It reports whether pkt
// now holds a reply that should go back out.
func echoReply(pkt []byte) bool {
	if len(pkt) < header.IPv4MinimumSize || header.IPVersion(pkt) != 4 {
		return false
	}
	ip := header.IPv4(pkt)
	if !ip.IsValid(len(pkt)) || ip.TransportProtocol() != header.ICMPv4ProtocolNumber {
		return false
	}
	icmp := header.ICMPv4(ip.Payload())
	if len(icmp) < header.ICMPv4MinimumSize || icmp.Type() != header.ICMPv4Echo {
		return false
	}

	src := ip.SourceAddress()
	ip.SetSourceAddress(ip.DestinationAddress())
	ip.SetDestinationAddress(src)
	icmp.SetType(header.ICMPv4EchoReply)
	icmp.SetChecksum(0)
	icmp.SetChecksum(^checksum.Checksum(icmp, 0))
	ip.SetChecksum(0)
	ip.SetChecksum(^ip.CalculateChecksum())

	log.Debugf("echo reply to %s", ip.DestinationAddress())
	return true
}
