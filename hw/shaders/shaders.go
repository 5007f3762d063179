// Package shaders holds the post-processing shaders applied to the emulated
// screen. Shaders are written once, in a small portable subset of GLSL, and
// translated to the dialect of the host OpenGL context.
package shaders

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed defs/*.toml
var dir embed.FS

const DefaultName = "Passthrough"

// Type is the type of a uniform or varying.
type Type string

const (
	Float     Type = "float"
	Vec2      Type = "vec2"
	Vec3      Type = "vec3"
	Vec4      Type = "vec4"
	Mat4      Type = "mat4"
	Sampler2D Type = "sampler2D"
)

func (t Type) valid() bool {
	switch t {
	case Float, Vec2, Vec3, Vec4, Mat4, Sampler2D:
		return true
	}
	return false
}

type Var struct {
	Name string `toml:"name"`
	Type Type   `toml:"type"`
}

// Shader is a portable shader description.
//
// The vertex stage receives the quad vertices in Position (vec3) and their
// texture coordinates in TexCoord (vec2) and must write gl_Position. The
// fragment stage writes FragColor. Both bodies use texture() for sampling.
// The host sets these uniforms when a shader declares them:
//
//	Screen      sampler2D  emulated screen
//	ScreenSize  vec2       emulated screen size, in pixels
//	OutputSize  vec2       window size, in pixels
type Shader struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Uniforms    []Var  `toml:"uniform"`
	Varyings    []Var  `toml:"varying"`
	Vertex      string `toml:"vertex"`
	Fragment    string `toml:"fragment"`
}

// Dialect is a target GLSL version.
type Dialect uint8

const (
	GLSL330   Dialect = iota // OpenGL 3.3 core
	GLSLES300                // OpenGL ES 3.0, WebGL 2
	GLSL120                  // OpenGL 2.1
)

func (d Dialect) String() string {
	switch d {
	case GLSL330:
		return "330 core"
	case GLSLES300:
		return "300 es"
	case GLSL120:
		return "120"
	}
	return fmt.Sprintf("Dialect(%d)", d)
}

type Stage uint8

const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	if s == Vertex {
		return "vertex"
	}
	return "fragment"
}

var (
	identRx = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

	// Constructs the translation can't map to every dialect.
	forbidden = []string{"#", "gl_FragColor", "gl_FragData", "texture2D", "attribute", "varying"}

	builtins = []string{"Position", "TexCoord", "FragColor", "texture"}
)

// Validate checks that a shader only uses the portable subset.
func (s *Shader) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("shader without name")
	}
	seen := make(map[string]bool)
	for _, v := range slices.Concat(s.Uniforms, s.Varyings) {
		if !identRx.MatchString(v.Name) || strings.HasPrefix(v.Name, "gl_") {
			return fmt.Errorf("shader %s: invalid identifier %q", s.Name, v.Name)
		}
		if slices.Contains(builtins, v.Name) {
			return fmt.Errorf("shader %s: %s is predefined", s.Name, v.Name)
		}
		if seen[v.Name] {
			return fmt.Errorf("shader %s: %s declared twice", s.Name, v.Name)
		}
		seen[v.Name] = true
		if !v.Type.valid() {
			return fmt.Errorf("shader %s: %s has invalid type %q", s.Name, v.Name, v.Type)
		}
	}
	for _, v := range s.Varyings {
		if v.Type == Sampler2D {
			return fmt.Errorf("shader %s: varying %s can't be a sampler", s.Name, v.Name)
		}
	}
	for _, body := range []struct {
		stage Stage
		src   string
	}{{Vertex, s.Vertex}, {Fragment, s.Fragment}} {
		if strings.TrimSpace(body.src) == "" {
			return fmt.Errorf("shader %s: empty %s body", s.Name, body.stage)
		}
		for _, tok := range forbidden {
			if strings.Contains(body.src, tok) {
				return fmt.Errorf("shader %s: %s body uses non portable %q", s.Name, body.stage, tok)
			}
		}
	}
	return nil
}

// Source returns the GLSL source of one stage of s, in dialect d.
func (s *Shader) Source(d Dialect, stage Stage) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	switch d {
	case GLSL330:
		sb.WriteString("#version 330 core\n")
	case GLSLES300:
		sb.WriteString("#version 300 es\nprecision mediump float;\n")
	case GLSL120:
		sb.WriteString("#version 120\n")
		if stage == Fragment {
			sb.WriteString("#define texture texture2D\n#define FragColor gl_FragColor\n")
		} else {
			sb.WriteString("#define texture texture2D\n")
		}
	default:
		return "", fmt.Errorf("unknown dialect %d", d)
	}

	modern := d != GLSL120
	// Inputs of the vertex stage, outputs of the fragment stage.
	switch {
	case stage == Vertex && modern:
		sb.WriteString("layout (location = 0) in vec3 Position;\n")
		sb.WriteString("layout (location = 1) in vec2 TexCoord;\n")
	case stage == Vertex:
		sb.WriteString("attribute vec3 Position;\nattribute vec2 TexCoord;\n")
	case modern:
		sb.WriteString("out vec4 FragColor;\n")
	}

	for _, v := range s.Varyings {
		qual := "varying"
		if modern {
			qual = "in"
			if stage == Vertex {
				qual = "out"
			}
		}
		fmt.Fprintf(&sb, "%s %s %s;\n", qual, v.Type, v.Name)
	}
	for _, v := range s.Uniforms {
		fmt.Fprintf(&sb, "uniform %s %s;\n", v.Type, v.Name)
	}

	body := s.Vertex
	if stage == Fragment {
		body = s.Fragment
	}
	sb.WriteString("\nvoid main() {\n")
	for _, line := range strings.Split(strings.TrimRight(body, "\n "), "\n") {
		if line = strings.TrimRight(line, " \t"); line != "" {
			sb.WriteString("    ")
			sb.WriteString(line)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
	return sb.String(), nil
}

// Parse decodes a shader description.
func Parse(data string) (*Shader, error) {
	var s Shader
	md, err := toml.Decode(data, &s)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		return nil, fmt.Errorf("unknown keys in shader: %v", undec)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

var embedded = sync.OnceValues(func() (map[string]*Shader, error) {
	dirents, err := dir.ReadDir("defs")
	if err != nil {
		return nil, err
	}
	m := make(map[string]*Shader)
	for _, dirent := range dirents {
		buf, err := dir.ReadFile(path.Join("defs", dirent.Name()))
		if err != nil {
			return nil, err
		}
		s, err := Parse(string(buf))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dirent.Name(), err)
		}
		m[s.Name] = s
	}
	return m, nil
})

// Names returns the names of all embedded shaders.
func Names() []string {
	m, err := embedded()
	if err != nil {
		panic(err)
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns an embedded shader.
func Lookup(name string) (*Shader, error) {
	m, err := embedded()
	if err != nil {
		return nil, err
	}
	s, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("unknown shader %q", name)
	}
	return s, nil
}
