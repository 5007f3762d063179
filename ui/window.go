package ui

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"multiemu/emu"
	"multiemu/emu/log"
	"multiemu/hw"
	"multiemu/hw/shaders"
)

type window struct {
	*sdl.Window
	context sdl.GLContext

	prog    uint32
	texture uint32
	vao     uint32

	// uniform locations, -1 when the shader doesn't use them.
	uScreen     int32
	uScreenSize int32
	uOutputSize int32

	texw, texh int
}

// newWindow creates an OpenGL window showing a texture of texw*texh pixels,
// scaled by vcfg.Scale, through the shader named in vcfg. It must be called
// on the SDL thread, after sdl.Init.
func newWindow(title string, texw, texh int, vcfg emu.VideoConfig) (*window, error) {
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	x := int32(sdl.WINDOWPOS_CENTERED_MASK) | vcfg.Monitor
	winw := int32(texw * vcfg.Scale)
	winh := int32(texh * vcfg.Scale)
	w, err := sdl.CreateWindow(title, x, x, winw, winh,
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %s", err)
	}

	context, err := w.GLCreateContext()
	if err != nil {
		w.Destroy()
		return nil, fmt.Errorf("failed to create OpenGL context: %s", err)
	}
	win := &window{Window: w, context: context}

	if err := gl.Init(); err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to initialize opengl: %s", err)
	}

	interval := 1
	if vcfg.DisableVSync {
		interval = 0
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.ModVideo.WarnZ("failed to set swap interval").Error("err", err).End()
	}

	if err := win.setShader(vcfg.Shader); err != nil {
		win.Close()
		return nil, err
	}

	gl.GenTextures(1, &win.texture)
	gl.BindTexture(gl.TEXTURE_2D, win.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	win.resizeTexture(texw, texh)

	var VBO, EBO uint32
	gl.GenVertexArrays(1, &win.vao)
	gl.GenBuffers(1, &VBO)
	gl.GenBuffers(1, &EBO)

	gl.BindVertexArray(win.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	// Position attributes
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(0)

	// Texture coordinate attributes.
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return win, nil
}

func (w *window) setShader(name string) error {
	sh, err := shaders.Lookup(name)
	if err != nil {
		return err
	}
	vsrc, err := sh.Source(shaders.GLSL330, shaders.Vertex)
	if err != nil {
		return err
	}
	fsrc, err := sh.Source(shaders.GLSL330, shaders.Fragment)
	if err != nil {
		return err
	}

	vert, err := compileShader(vsrc+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("shader %s: vertex stage: %s", name, err)
	}
	frag, err := compileShader(fsrc+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return fmt.Errorf("shader %s: fragment stage: %s", name, err)
	}
	prog, err := linkProgram(vert, frag)
	if err != nil {
		return fmt.Errorf("shader %s: %s", name, err)
	}

	if w.prog != 0 {
		gl.DeleteProgram(w.prog)
	}
	w.prog = prog
	w.uScreen = gl.GetUniformLocation(prog, gl.Str("Screen\x00"))
	w.uScreenSize = gl.GetUniformLocation(prog, gl.Str("ScreenSize\x00"))
	w.uOutputSize = gl.GetUniformLocation(prog, gl.Str("OutputSize\x00"))

	log.ModVideo.InfoZ("using shader").String("name", name).End()
	return nil
}

func (w *window) resizeTexture(texw, texh int) {
	w.texw, w.texh = texw, texh
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(texw), int32(texh), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
}

// upload copies a frame into the screen texture.
func (w *window) upload(f *hw.FrameDescriptor) {
	if f.Width != w.texw || f.Height != w.texh {
		log.ModVideo.DebugZ("screen size changed").Int("width", f.Width).Int("height", f.Height).End()
		w.resizeTexture(f.Width, f.Height)
	}
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(f.Stride/4))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(f.Width), int32(f.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&f.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
}

// draw renders the screen texture to the whole window.
func (w *window) draw() {
	outw, outh := w.GLGetDrawableSize()
	gl.Viewport(0, 0, outw, outh)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(w.prog)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	if w.uScreen >= 0 {
		gl.Uniform1i(w.uScreen, 0)
	}
	if w.uScreenSize >= 0 {
		gl.Uniform2f(w.uScreenSize, float32(w.texw), float32(w.texh))
	}
	if w.uOutputSize >= 0 {
		gl.Uniform2f(w.uOutputSize, float32(outw), float32(outh))
	}
	gl.BindVertexArray(w.vao)
	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_INT, nil)

	w.GLSwap()
}

func (w *window) Close() error {
	if w.context != nil {
		sdl.GLDeleteContext(w.context)
	}
	return w.Destroy()
}

// Columns are position and texture coordinates.
// Rows are the quad vertices in clockwise order.
var vertices = []float32{
	// x, y, z, s, t
	1.0, 1.0, 0, 1, 0, // top right
	1.0, -1.0, 0, 1, 1, // bottom right
	-1.0, -1.0, 0, 0, 1, // bottom left
	-1.0, 1.0, 0, 0, 0, // top left
}

var indices = []uint32{
	0, 1, 3,
	1, 2, 3,
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(source)
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	if gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status); status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)

		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(sh, logLength, nil, &log[0])
		gl.DeleteShader(sh)

		return 0, fmt.Errorf("shader compile error: %v", string(log))
	}

	return sh, nil
}

func linkProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	prg := gl.CreateProgram()
	gl.AttachShader(prg, vertexShader)
	gl.AttachShader(prg, fragmentShader)
	gl.LinkProgram(prg)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	if gl.GetProgramiv(prg, gl.LINK_STATUS, &status); status == gl.FALSE {
		var logLength int32
		var glLog [256]byte
		gl.GetProgramInfoLog(prg, int32(len(glLog)), &logLength, &glLog[0])
		gl.DeleteProgram(prg)
		return 0, fmt.Errorf("shader program link error: %v", string(glLog[:logLength]))
	}

	return prg, nil
}
