package main

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestPeerRegistration(t *testing.T) {
	assert := assert.New(t)
	defer setConn(nil)

	first := &websocket.Conn{}
	second := &websocket.Conn{}

	setConn(first)
	setConn(second) // a new peer takes over

	// the replaced peer's teardown must not deregister the active one
	clearConn(first)
	wsLock.Lock()
	active := wsConn
	wsLock.Unlock()
	assert.Same(second, active)

	clearConn(second)
	wsLock.Lock()
	active = wsConn
	wsLock.Unlock()
	assert.Nil(active)
}
