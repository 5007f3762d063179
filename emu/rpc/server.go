// Package rpc exposes the controls of a running emulator to other processes.
package rpc

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/rpc"
)

// Emu is the set of emulator controls reachable remotely. *emu.Emulator
// implements it.
type Emu interface {
	Reset(hard bool) error
	SetPause(pause bool) error
	Stop()
	SaveSlot(slot int) error
	LoadSlot(slot int) error
	Done() <-chan struct{}
}

type emuProxy struct {
	emu Emu
}

func (ep *emuProxy) Reset(hard bool, _ *struct{}) error     { return ep.emu.Reset(hard) }
func (ep *emuProxy) SetPause(pause bool, _ *struct{}) error { return ep.emu.SetPause(pause) }
func (ep *emuProxy) SaveSlot(slot int, _ *struct{}) error   { return ep.emu.SaveSlot(slot) }
func (ep *emuProxy) LoadSlot(slot int, _ *struct{}) error   { return ep.emu.LoadSlot(slot) }
func (ep *emuProxy) Stop(_ *struct{}, _ *struct{}) error    { ep.emu.Stop(); return nil }

func (ep *emuProxy) IsReady(_ *struct{}, reply *bool) error {
	select {
	case <-ep.emu.Done():
		*reply = false
	default:
		*reply = true
	}
	return nil
}

// Server serves the controls of an emulator over HTTP.
type Server struct {
	io.Closer
	port int
}

// NewServer starts serving the controls of emu on a local port. Port 0 picks
// a free one, see Port.
func NewServer(port int, emu Emu) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(service, &emuProxy{emu: emu}); err != nil {
		panic("failed to register RPC server: " + err.Error())
	}
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, srv)

	l, err := net.Listen("tcp", address(port))
	if err != nil {
		return nil, err
	}
	port = l.Addr().(*net.TCPAddr).Port

	modRPC.InfoZ("rpc server listening").Int("port", port).End()
	go func() {
		if err := http.Serve(l, mux); err != nil && !errors.Is(err, net.ErrClosed) {
			modRPC.WarnZ("rpc server stopped").Error("err", err).End()
		}
	}()
	return &Server{Closer: l, port: port}, nil
}

// Port returns the port the server listens on.
func (s *Server) Port() int { return s.port }
