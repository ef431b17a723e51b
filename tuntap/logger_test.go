package tuntap

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

// caller returns file name and line number of the calling line.
func caller() (string, int) {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		panic("runtime.Caller failed")
	}
	return path.Base(file), line
}

func TestLoggerCalldepth(t *testing.T) {
	assert := assert.New(t)
	defer SetLogger(nil)

	// Lshortfile only; a timestamp would make the output
	// non-deterministic
	var buf bytes.Buffer
	l := log.New(&buf, "", log.Lshortfile)
	// an explicit closure, not the method value l.Output: closure
	// frames are always counted by runtime.Caller, method-value
	// wrappers are not on modern toolchains
	SetLogger(stdLogger{output: func(c int, s string) error { return l.Output(c, s) }})

	logger.Infof("up %s", "tun0")
	file, line := caller()
	assert.Equal(fmt.Sprintf("%s:%d: INFO - up tun0\n", file, line-1), buf.String())
	buf.Reset()

	logger.Errorf("close %s", "tun0")
	file, line = caller()
	assert.Equal(fmt.Sprintf("%s:%d: ERROR - close tun0\n", file, line-1), buf.String())
}

func TestLoggerDefault(t *testing.T) {
	assert := assert.New(t)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
	}()

	var buf bytes.Buffer
	log.SetFlags(log.Lshortfile)
	log.SetOutput(&buf)

	logger.Errorf("test %d", 1)
	file, line := caller()
	assert.Equal(fmt.Sprintf("%s:%d: ERROR - test 1\n", file, line-1), buf.String())

	buf.Reset()
	logger.Infof("test %d", 2)
	file, line = caller()
	assert.Equal(fmt.Sprintf("%s:%d: INFO - test 2\n", file, line-1), buf.String())
}
