package main

import (
	"crypto/cipher"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/digineo/tuntap/ifconfig"
	"github.com/digineo/tuntap/tuntap"
)

const (
	pingInterval  = 30 * time.Second
	writeTimeout  = 10 * time.Second
	reconnectWait = 3 * time.Second
)

var (
	listenAddr string
	connectURL string
	ifaceName  string
	addrSpec   string
	mtu        int
	pskHex     string
	verbose    bool

	tunnel *tuntap.Interface
	aead   cipher.AEAD

	wsLock sync.Mutex
	wsConn *websocket.Conn
)

func main() {
	flag.StringVar(&listenAddr, "listen", "", "listen address for the server side, e.g. :8080")
	flag.StringVar(&connectURL, "connect", "", "websocket `URL` of the peer, e.g. ws://host:8080/tunnel")
	flag.StringVar(&ifaceName, "name", "", "requested interface name")
	flag.StringVar(&addrSpec, "addr", "", "local address in CIDR notation")
	flag.IntVar(&mtu, "mtu", 0, "interface MTU")
	flag.StringVar(&pskHex, "psk", "", "hex-encoded 32-byte pre-shared key")
	flag.BoolVar(&verbose, "v", false, "enable verbose output")
	flag.Parse()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	tuntap.SetLogger(log.StandardLogger())
	if (listenAddr == "") == (connectURL == "") {
		log.Fatal("exactly one of -listen and -connect is required")
	}

	if pskHex != "" {
		var err error
		aead, err = newAEAD(pskHex)
		if err != nil {
			log.Fatalf("invalid PSK: %v", err)
		}
	}

	var err error
	tunnel, err = tuntap.New(tuntap.Config{Kind: tuntap.TUN, Name: ifaceName, MTU: mtu})
	if err != nil {
		log.Fatalf("error creating tun device: %v", err)
	}
	defer tunnel.Close()

	name, err := tunnel.Name()
	if err != nil {
		log.Fatalf("error reading interface name: %v", err)
	}
	if addrSpec != "" {
		ip, ipnet, err := net.ParseCIDR(addrSpec)
		if err != nil {
			log.Fatalf("invalid -addr %q: %v", addrSpec, err)
		}
		ones, _ := ipnet.Mask.Size()
		if err := ifconfig.SetAddr(name, ip, uint8(ones)); err != nil {
			log.Fatalf("error assigning %s: %v", addrSpec, err)
		}
	}
	if mtu > 0 {
		if err := ifconfig.SetMTU(name, mtu); err != nil {
			log.Fatalf("error setting MTU: %v", err)
		}
	}
	log.WithFields(log.Fields{"interface": name}).Info("tunnel interface ready")

	go tunnelToWS()

	if listenAddr != "" {
		go serve(listenAddr)
	} else {
		go connectLoop(connectURL)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	log.Infof("interrupt received: %s", <-sigs)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
}

func serve(addr string) {
	http.HandleFunc("/tunnel", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorf("websocket upgrade: %v", err)
			return
		}
		log.WithFields(log.Fields{"peer": r.RemoteAddr}).Info("peer connected")
		runConn(conn)
	})

	log.Infof("listening on ws://%s/tunnel", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func connectLoop(url string) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	for {
		conn, _, err := dialer.Dial(url, nil)
		if err != nil {
			log.Errorf("dial %s: %v", url, err)
			time.Sleep(reconnectWait)
			continue
		}
		log.WithFields(log.Fields{"url": url}).Info("connected")
		runConn(conn)
		time.Sleep(reconnectWait)
	}
}

// runConn pumps packets from the websocket into the tun device until
// the connection dies.
func runConn(conn *websocket.Conn) {
	defer conn.Close()

	setConn(conn)
	defer clearConn(conn)

	conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	})
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeTimeout))
	})

	stop := make(chan struct{})
	defer close(stop)
	go keepalive(conn, stop)

	for {
		kind, frame, err := conn.ReadMessage()
		if err != nil {
			log.Errorf("websocket read: %v", err)
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}

		packet := frame
		if aead != nil {
			packet, err = open(aead, frame)
			if err != nil {
				log.Errorf("decrypt: %v", err)
				continue
			}
		}
		log.Debugf("got %d bytes from websocket", len(packet))

		if _, err := tunnel.Write(packet); err != nil {
			log.Errorf("tunnel write: %v", err)
		}
	}
}

func keepalive(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			if err != nil {
				log.Errorf("ping: %v", err)
				return
			}
		case <-stop:
			return
		}
	}
}

// from tun device to websocket
func tunnelToWS() {
	buf := make([]byte, tunnel.MTU())
	for {
		n, err := tunnel.Read(buf)
		if err != nil {
			log.Errorf("tunnel read: %v", err)
			return
		}
		log.Debugf("got %d bytes from tunnel", n)

		frame := buf[:n]
		if aead != nil {
			frame, err = seal(aead, frame)
			if err != nil {
				log.Errorf("encrypt: %v", err)
				continue
			}
		}

		wsLock.Lock()
		conn := wsConn
		var werr error
		if conn != nil {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			werr = conn.WriteMessage(websocket.BinaryMessage, frame)
		}
		wsLock.Unlock()

		if conn == nil {
			log.Debugf("no peer connected, dropping packet")
		} else if werr != nil {
			log.Errorf("websocket write: %v", werr)
		}
	}
}

func setConn(conn *websocket.Conn) {
	wsLock.Lock()
	wsConn = conn
	wsLock.Unlock()
}

// clearConn deregisters conn unless another peer has already replaced
// it.
func clearConn(conn *websocket.Conn) {
	wsLock.Lock()
	if wsConn == conn {
		wsConn = nil
	}
	wsLock.Unlock()
}
