package inspect

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	"multiemu/hw"
)

type source struct{ in *hw.Inspection }

func (s source) Inspection() *hw.Inspection { return s.in }

func testInspection() *hw.Inspection {
	return &hw.Inspection{
		System:     "chip8",
		Rom:        "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		State:      hw.Paused,
		Time:       hw.VirtualTime{Step: 42},
		Generation: 3,
		Fault:      "cpu: invalid opcode",
		Components: []hw.ComponentView{
			{
				Name:    "cpu",
				Variant: "chip8.cpu",
				Caps:    hw.CapClocked | hw.CapInspect,
				Rate:    600,
				Cycles:  25200,
				Fields: []hw.Field{
					{Name: "PC", Value: 0x2a, Width: 12},
					{Name: "V0", Value: 0xf, Width: 8},
				},
			},
			{Name: "ram", Variant: "memory.ram"},
		},
	}
}

// decoded is the subset of the document checked by the tests.
type decoded struct {
	System     string
	State      string
	Step       uint64
	Fault      string
	Components []string
	Fields     map[string]string
}

func decode(t *testing.T, data []byte) decoded {
	t.Helper()
	var got decoded
	got.Fields = make(map[string]string)
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "system":
			got.System, err = d.Str()
		case "state":
			got.State, err = d.Str()
		case "fault":
			got.Fault, err = d.Str()
		case "time":
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "step" {
					return d.Skip()
				}
				got.Step, err = d.UInt64()
				return err
			})
		case "components":
			return d.Arr(func(d *jx.Decoder) error {
				return d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "name":
						name, err := d.Str()
						got.Components = append(got.Components, name)
						return err
					case "fields":
						return d.Obj(func(d *jx.Decoder, key string) error {
							v, err := d.Str()
							got.Fields[key] = v
							return err
						})
					}
					return d.Skip()
				})
			})
		default:
			return d.Skip()
		}
		return err
	})
	if err != nil {
		t.Fatalf("invalid JSON %s: %v", data, err)
	}
	return got
}

func TestEncode(t *testing.T) {
	var e jx.Encoder
	Encode(&e, testInspection())

	want := decoded{
		System:     "chip8",
		State:      "Paused",
		Step:       42,
		Fault:      "cpu: invalid opcode",
		Components: []string{"cpu", "ram"},
		Fields:     map[string]string{"PC": "02a", "V0": "0f"},
	}
	if diff := cmp.Diff(want, decode(t, e.Bytes())); diff != "" {
		t.Errorf("encoded inspection mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler(t *testing.T) {
	srv := httptest.NewServer(Handler(source{testInspection()}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got := decode(t, body); got.Step != 42 {
		t.Errorf("step = %d, want 42", got.Step)
	}

	resp, err = http.Post(srv.URL+"/state", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %s, want 405", resp.Status)
	}
}

func TestHandlerNoInspection(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(source{}).ServeHTTP(rec, httptest.NewRequest("GET", "/state", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestListen(t *testing.T) {
	s, err := Listen("localhost:0", source{testInspection()})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	resp, err := http.Get("http://" + s.Addr() + "/state")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %s", resp.Status)
	}
}
