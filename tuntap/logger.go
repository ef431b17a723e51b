package tuntap

import (
	"fmt"
	"log"
)

// Logger receives status messages from this package. Both logrus and
// the fallback wrapper around the standard log package satisfy it.
type Logger interface {
	Infof(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

var logger Logger = stdLogger{}

// SetLogger redirects the package's log output. Passing nil restores
// the standard log package.
func SetLogger(l Logger) {
	if l == nil {
		logger = stdLogger{}
		return
	}
	logger = l
}

// stdLogger writes through the standard log package, attributing each
// message to the line that called into tuntap.
type stdLogger struct {
	output func(calldepth int, s string) error // replaced in tests
}

func (l stdLogger) Infof(format string, a ...interface{})  { l.emit("INFO", format, a...) }
func (l stdLogger) Errorf(format string, a ...interface{}) { l.emit("ERROR", format, a...) }

func (l stdLogger) emit(level, format string, a ...interface{}) {
	msg := fmt.Sprintf(level+" - "+format, a...)
	if l.output == nil {
		// log.std is not exposed, log.Output is the closest we get
		log.Output(3, msg)
		return
	}
	l.output(4, msg)
}
