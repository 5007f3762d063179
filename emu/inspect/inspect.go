// Package inspect serves the inspection published by a running emulator as
// JSON, over HTTP.
package inspect

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/jx"

	"multiemu/emu/log"
	"multiemu/hw"
)

var modInspect = log.NewModule("inspect")

// Source provides the last published inspection, nil if there is none yet.
type Source interface {
	Inspection() *hw.Inspection
}

// Encode writes in as a JSON object.
func Encode(e *jx.Encoder, in *hw.Inspection) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("system", func(e *jx.Encoder) { e.Str(in.System) })
		e.Field("rom", func(e *jx.Encoder) { e.Str(in.Rom) })
		e.Field("state", func(e *jx.Encoder) { e.Str(in.State.String()) })
		e.Field("time", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("step", func(e *jx.Encoder) { e.UInt64(in.Time.Step) })
				e.Field("slice", func(e *jx.Encoder) { e.Int(in.Time.Slice) })
			})
		})
		e.Field("generation", func(e *jx.Encoder) { e.UInt64(in.Generation) })
		if in.Fault != "" {
			e.Field("fault", func(e *jx.Encoder) { e.Str(in.Fault) })
		}
		e.Field("components", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range in.Components {
					encodeComponent(e, &in.Components[i])
				}
			})
		})
	})
}

func encodeComponent(e *jx.Encoder, c *hw.ComponentView) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("variant", func(e *jx.Encoder) { e.Str(string(c.Variant)) })
		e.Field("caps", func(e *jx.Encoder) { e.Str(c.Caps.String()) })
		e.Field("rate", func(e *jx.Encoder) { e.UInt64(c.Rate) })
		e.Field("cycles", func(e *jx.Encoder) { e.UInt64(c.Cycles) })
		if len(c.Fields) == 0 {
			return
		}
		// Registers, as hex strings padded to their width.
		e.Field("fields", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, f := range c.Fields {
					e.Field(f.Name, func(e *jx.Encoder) { e.Str(hexField(f)) })
				}
			})
		})
	})
}

func hexField(f hw.Field) string {
	s := strconv.FormatUint(f.Value, 16)
	digits := (f.Width + 3) / 4
	for len(s) < digits {
		s = "0" + s
	}
	return s
}

// Handler serves GET /state.
func Handler(src Source) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", func(w http.ResponseWriter, r *http.Request) {
		in := src.Inspection()
		if in == nil {
			http.Error(w, "no inspection available", http.StatusServiceUnavailable)
			return
		}
		var e jx.Encoder
		Encode(&e, in)
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(e.Bytes()); err != nil {
			modInspect.DebugZ("write failed").Error("err", err).End()
		}
	})
	return mux
}

type Server struct {
	srv *http.Server
	l   net.Listener
}

// Listen starts serving the inspections of src on addr.
func Listen(addr string, src Source) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		srv: &http.Server{Handler: Handler(src), ReadHeaderTimeout: 5 * time.Second},
		l:   l,
	}
	go func() {
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			modInspect.WarnZ("inspection server stopped").Error("err", err).End()
		}
	}()
	modInspect.InfoZ("inspection server listening").String("addr", l.Addr().String()).End()
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.l.Addr().String() }

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
