package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/digineo/tuntap/ifconfig"
	"github.com/digineo/tuntap/tuntap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		runCreate(args, false)
	case "dump":
		runCreate(args, true)
	case "up":
		requireArgs(args, 1)
		fail(ifconfig.Up(args[0]))
	case "addr":
		requireArgs(args, 2)
		ip, prefixlen := parseCIDR(args[1])
		fail(ifconfig.SetAddr(args[0], ip, prefixlen))
	case "mac":
		requireArgs(args, 2)
		mac, err := net.ParseMAC(args[1])
		fail(err)
		fail(ifconfig.SetMAC(args[0], mac))
	case "index":
		requireArgs(args, 1)
		index, err := ifconfig.InterfaceIndex(args[0])
		fail(err)
		fmt.Println(index)
	case "getmtu":
		requireArgs(args, 1)
		mtu, err := ifconfig.GetMTU(args[0])
		fail(err)
		fmt.Println(mtu)
	case "setmtu":
		requireArgs(args, 2)
		mtu, _ := strconv.Atoi(args[1])
		fail(ifconfig.SetMTU(args[0], mtu))
	case "ifstat":
		requireArgs(args, 1)
		stats, err := ifconfig.Stats(args[0])
		fail(err)
		fmt.Printf("%+v\n", *stats)
	default:
		fmt.Println("invalid command:", cmd)
		usage()
		os.Exit(1)
	}
}

func runCreate(args []string, dump bool) {
	var (
		configFile string
		kindName   string
		name       string
		device     string
		mtu        int
		addr       string
		mac        string
		persist    bool
		verbose    bool
	)

	flags := flag.NewFlagSet("tuntap", flag.ExitOnError)
	flags.StringVar(&configFile, "config", "", "`PATH` to config file")
	flags.StringVar(&kindName, "kind", "", "interface type: tun or tap")
	flags.StringVar(&name, "name", "", "requested interface name")
	flags.StringVar(&device, "device", "", "clone device path")
	flags.IntVar(&mtu, "mtu", 0, "interface MTU")
	flags.StringVar(&addr, "addr", "", "address in CIDR notation")
	flags.StringVar(&mac, "mac", "", "MAC address (TAP only)")
	flags.BoolVar(&persist, "persist", false, "keep the interface on exit")
	flags.BoolVar(&verbose, "v", false, "enable verbose output")
	flags.Parse(args)

	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	tuntap.SetLogger(log.StandardLogger())

	cfg := &config{}
	if configFile != "" {
		var err error
		cfg, err = readConfig(configFile)
		if err != nil {
			log.Fatalf("cannot read config file %q: %v", configFile, err)
		}
	}

	// flags override the file
	if kindName != "" {
		cfg.Kind = kindName
	}
	if name != "" {
		cfg.Name = name
	}
	if device != "" {
		cfg.Device = device
	}
	if mtu != 0 {
		cfg.MTU = mtu
	}
	if mac != "" {
		cfg.MAC = mac
	}
	if addr != "" {
		cfg.Addresses = append(cfg.Addresses, addr)
	}
	if persist {
		cfg.Persist = true
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("error validating config: %v", err)
	}

	ifc, err := tuntap.New(tuntap.Config{
		Kind:    cfg.kind,
		Name:    cfg.Name,
		Device:  cfg.Device,
		MTU:     cfg.MTU,
		Persist: cfg.Persist,
	})
	if err != nil {
		log.Fatalf("error creating interface: %v", err)
	}
	defer ifc.Close()

	ifname, err := ifc.Name()
	if err != nil {
		log.Fatalf("error reading interface name: %v", err)
	}

	for _, a := range cfg.addrs {
		if err := ifconfig.SetAddr(ifname, a.ip, a.prefixlen); err != nil {
			log.Fatalf("error assigning %s: %v", a.ip, err)
		}
		log.WithFields(log.Fields{"interface": ifname, "addr": a.ip}).Info("address assigned")
	}
	if cfg.mac != nil {
		if err := ifconfig.SetMAC(ifname, cfg.mac); err != nil {
			log.Fatalf("error setting MAC address: %v", err)
		}
	}
	if cfg.MTU > 0 {
		if err := ifconfig.SetMTU(ifname, cfg.MTU); err != nil {
			log.Fatalf("error setting MTU: %v", err)
		}
	}

	log.WithFields(log.Fields{
		"interface": ifname,
		"kind":      ifc.Kind().String(),
	}).Info("interface ready")

	if cfg.Persist && !dump {
		// the interface survives without the descriptor
		return
	}

	if dump {
		go dumpPackets(ifc)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
}

func dumpPackets(ifc *tuntap.Interface) {
	buf := make([]byte, ifc.MTU())
	for {
		n, err := ifc.Read(buf)
		if err != nil {
			log.Errorf("read: %v", err)
			return
		}
		log.Debugf("packet of %d bytes", n)
		fmt.Print(hex.Dump(buf[:n]))
	}
}

func parseCIDR(s string) (net.IP, uint8) {
	ip, ipnet, err := net.ParseCIDR(s)
	fail(err)
	ones, _ := ipnet.Mask.Size()
	return ip, uint8(ones)
}

func requireArgs(args []string, n int) {
	if len(args) < n {
		usage()
		os.Exit(1)
	}
}

func fail(err error) {
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`usage: tuntap COMMAND [ARGS]

Commands:
  create [-config PATH] [-kind tun|tap] [-name NAME] [-device PATH]
         [-mtu N] [-addr CIDR] [-mac MAC] [-persist] [-v]
  dump   same flags as create, hexdumps received packets
  up     NAME
  addr   NAME CIDR
  mac    NAME MAC
  index  NAME
  getmtu NAME
  setmtu NAME MTU
  ifstat NAME`)
}
