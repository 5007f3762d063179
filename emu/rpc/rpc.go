package rpc

import (
	"net"
	"strconv"

	"multiemu/emu/log"
)

var modRPC = log.NewModule("rpc")

// Methods of the emulator service.
const (
	service = "emu"

	mReset    = service + ".Reset"
	mSetPause = service + ".SetPause"
	mSaveSlot = service + ".SaveSlot"
	mLoadSlot = service + ".LoadSlot"
	mStop     = service + ".Stop"
	mIsReady  = service + ".IsReady"
)

// The server only listens on the loopback interface.
func address(port int) string {
	return net.JoinHostPort("localhost", strconv.Itoa(port))
}
