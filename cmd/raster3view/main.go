// raster3view - Terminal 3D Model Viewer
// View glTF/GLB files in your terminal with full 3D rendering.
//
// Controls:
//
//	Mouse drag  - Orbit model (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Space       - Apply random impulse
//	R           - Reset orbit
//	T           - Toggle texture on/off
//	X           - Toggle wireframe mode
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	?           - Toggle HUD overlay (FPS, filename, poly count, mode status)
//	+/-         - Adjust zoom
//	Esc         - Quit (or cancel light mode)
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/soft3d/raster/pkg/meshfile"
	"github.com/soft3d/raster/pkg/present"
	"github.com/soft3d/raster/pkg/raster"
	"github.com/soft3d/raster/pkg/vecmath"
)

var (
	texturePath = flag.String("texture", "", "Path to texture image (PNG/JPG)")
	targetFPS   = flag.Int("fps", 60, "Target FPS")
	bgColor     = flag.String("bg", "30,30,40", "Background color (R,G,B)")
	verbose     = flag.Bool("v", false, "Log lifecycle events to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "raster3view - Terminal 3D Model Viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: raster3view [options] <model.glb|model.gltf>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit model\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Roll left/right\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  T           - Toggle texture\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  L           - Position light (mouse to aim, click to set)\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	modelPath := flag.Arg(0)

	if err := run(modelPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// RenderMode controls how the mesh is drawn.
type RenderMode int

const (
	RenderModeTextured  RenderMode = iota // textured, Gouraud+texture shading
	RenderModeFlat                        // Gouraud shading, no texture
	RenderModeWireframe                   // edges only, no fill
)

// ViewState holds UI state that has no home in pkg/raster or pkg/present:
// which render mode is active, whether the light-aiming overlay is live,
// and the pending/current light direction it edits.
type ViewState struct {
	TextureEnabled bool
	RenderMode     RenderMode
	LightMode      bool
	LightDir       vecmath.Vec3
	PendingLight   vecmath.Vec3
	ShowHUD        bool
}

func NewViewState() *ViewState {
	return &ViewState{
		TextureEnabled: true,
		RenderMode:     RenderModeTextured,
		LightDir:       vecmath.V3(0.5, 1, 0.3).Normalize(),
	}
}

// ScreenToLightDir maps a screen position to a light direction on the
// hemisphere facing the camera.
func (v *ViewState) ScreenToLightDir(screenX, screenY, width, height int) vecmath.Vec3 {
	nx := (float64(screenX)/float64(width))*2 - 1
	ny := (float64(screenY)/float64(height))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)

	return vecmath.V3(nx, -ny, nz).Normalize()
}

// HUD renders an overlay with model info and controls directly to the
// terminal via ANSI escapes, outside the raster.Framebuffer entirely.
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{filename: filename, polyCount: polyCount, fpsTime: time.Now()}
}

func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func (h *HUD) Render(width, height int, viewState *ViewState) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if viewState.LightMode {
		lightMsg := fmt.Sprintf("%s%s%s ◉ LIGHT MODE - Move mouse to position, click to set, Esc to cancel %s",
			bgBlack, bold, fgYellow, reset)
		lightCol := max((width-60)/2, 1)
		fmt.Print(moveTo(height, lightCol) + lightMsg)
		return
	}

	if !viewState.ShowHUD {
		return
	}

	fpsStr := fmt.Sprintf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)
	fmt.Print(fpsStr)

	titleStr := fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.filename, reset)
	titleCol := max((width-len(h.filename)-2)/2, 1)
	fmt.Print(moveTo(1, titleCol) + titleStr)

	polyStr := fmt.Sprintf("%s%s%s %d polys %s", bgBlack, fgCyan, bold, h.polyCount, reset)
	polyCol := max(width-12, 1)
	fmt.Print(moveTo(1, polyCol) + polyStr)

	checkTex := "[ ]"
	if viewState.TextureEnabled && viewState.RenderMode != RenderModeWireframe {
		checkTex = "[✓]"
	}
	checkWire := "[ ]"
	if viewState.RenderMode == RenderModeWireframe {
		checkWire = "[✓]"
	}

	modeStr := fmt.Sprintf("%s%s %s Texture  %s X-Ray (wireframe) %s",
		bgBlack, fgWhite, checkTex, checkWire, reset)
	fmt.Print(moveTo(height, 1) + modeStr)

	hint := fmt.Sprintf("%s%s%s L: position light %s", bgBlack, dim, fgYellow, reset)
	hintCol := max(width-18, 1)
	fmt.Print(moveTo(height, hintCol) + hint)
}

func run(modelPath string) error {
	var bgR, bgG, bgB uint8 = 30, 30, 40
	fmt.Sscanf(*bgColor, "%d,%d,%d", &bgR, &bgG, &bgB)
	bg := present.RGB(bgR, bgG, bgB)

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	termRenderer := present.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	fb := raster.NewFramebuffer(fbWidth, fbHeight)
	depth := raster.NewDepthBuffer(fbWidth, fbHeight)

	ctx := raster.NewContext(fbWidth, fbHeight)
	ctx.SetTarget(fb)
	ctx.SetDepthBuffer(depth)
	ctx.SetPerspective(math.Pi/3, float64(fbWidth)/float64(fbHeight), 0.1, 100)

	orbit := present.NewOrbitCamera(vecmath.Zero3(), 5.0, *targetFPS)
	orbit.Apply(ctx)

	var tex *meshfile.Texture
	if *texturePath != "" {
		tex, err = meshfile.LoadTexture(*texturePath)
		if err != nil {
			slog.Warn("could not load texture", "path", *texturePath, "err", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(modelPath))
	var mesh *meshfile.Mesh

	switch ext {
	case ".glb", ".gltf":
		var embeddedImg image.Image
		mesh, embeddedImg, err = meshfile.LoadGLBWithTexture(modelPath)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		if tex == nil && embeddedImg != nil {
			tex = meshfile.TextureFromImage(embeddedImg)
			slog.Info("using embedded texture", "width", embeddedImg.Bounds().Dx(), "height", embeddedImg.Bounds().Dy())
		}
	default:
		return fmt.Errorf("unsupported format: %s (use .glb or .gltf)", ext)
	}

	if tex == nil {
		tex = meshfile.NewCheckerTexture(64, 64, 8, raster.RGB{R: 0.78, G: 0.78, B: 0.78}, raster.RGB{R: 0.39, G: 0.39, B: 0.39})
	}

	slog.Info("loaded model", "file", filepath.Base(modelPath), "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())

	hud := NewHUD(filepath.Base(modelPath), mesh.TriangleCount())

	mesh.CalculateBounds()
	center := mesh.Center()
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim > 0 {
		scale := 2.0 / maxDim
		transform := vecmath.Scale(vecmath.V3(scale, scale, scale)).Mul(vecmath.Translate(center.Negate()))
		mesh.Transform(transform)
	}
	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal != (vecmath.Vec3{}) {
			hasNormals = true
			break
		}
	}
	if !hasNormals {
		mesh.CalculateSmoothNormals()
	}

	packed := meshfile.Strip(mesh)

	boundsMin, boundsMax := packed.Bounds()
	modelBox := raster.NewAABB(boundsMin, boundsMax)
	slog.Debug("model bounds", "size", modelBox.Size(), "extents", modelBox.Extents())

	viewState := NewViewState()

	bgCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	inputTorque := struct{ pitch, yaw, roll float64 }{}
	const torqueStrength = 3.0

	var mouseDown bool
	var lastMouseX, lastMouseY int

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				termRenderer = present.NewTerminalRenderer(term, width, height)
				fbWidth, fbHeight = termRenderer.FramebufferSize()
				fb = raster.NewFramebuffer(fbWidth, fbHeight)
				depth = raster.NewDepthBuffer(fbWidth, fbHeight)
				ctx.SetTarget(fb)
				ctx.SetDepthBuffer(depth)
				ctx.SetPerspective(math.Pi/3, float64(fbWidth)/float64(fbHeight), 0.1, 100)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"):
					if viewState.LightMode {
						viewState.LightMode = false
					} else {
						cancel()
						return
					}
				case ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("q"):
					inputTorque.roll = -torqueStrength
				case ev.MatchString("r"):
					orbit.Reset()
					orbit.Distance = 5.0
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("e"):
					inputTorque.roll = torqueStrength
				case ev.MatchString("space"):
					orbit.ApplyImpulse(
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
					)
				case ev.MatchString("+", "="):
					orbit.Distance = math.Max(1, orbit.Distance-0.5)
				case ev.MatchString("-", "_"):
					orbit.Distance = math.Min(20, orbit.Distance+0.5)
				case ev.MatchString("t"):
					viewState.TextureEnabled = !viewState.TextureEnabled
				case ev.MatchString("x"):
					if viewState.RenderMode == RenderModeWireframe {
						viewState.RenderMode = RenderModeTextured
					} else {
						viewState.RenderMode = RenderModeWireframe
					}
				case ev.MatchString("l"):
					viewState.LightMode = true
					viewState.PendingLight = viewState.LightDir
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					viewState.ShowHUD = !viewState.ShowHUD
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
					inputTorque.pitch = 0
				case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
					inputTorque.yaw = 0
				case ev.MatchString("q"), ev.MatchString("e"):
					inputTorque.roll = 0
				}

			case uv.MouseClickEvent:
				if viewState.LightMode {
					viewState.LightDir = viewState.PendingLight
					viewState.LightMode = false
				} else {
					mouseDown = true
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseReleaseEvent:
				if !viewState.LightMode {
					mouseDown = false
				}

			case uv.MouseMotionEvent:
				if viewState.LightMode {
					viewState.PendingLight = viewState.ScreenToLightDir(ev.X, ev.Y, width, height)
				} else if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					orbit.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					orbit.Distance = math.Max(1, orbit.Distance-0.5)
				case uv.MouseWheelDown:
					orbit.Distance = math.Min(20, orbit.Distance+0.5)
				}
			}
		}
	}()

	targetDuration := time.Second / time.Duration(*targetFPS)
	lastFrame := time.Now()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	for {
		select {
		case <-bgCtx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now
		if dt > 0.1 {
			dt = 0.1
		}

		orbit.ApplyImpulse(
			inputTorque.pitch*dt,
			inputTorque.yaw*dt,
			inputTorque.roll*dt,
		)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9

		orbit.Update()
		orbit.Apply(ctx)

		fb.Clear(bg)
		ctx.ClearDepthBuffer()

		lightDir := viewState.LightDir
		if viewState.LightMode {
			lightDir = viewState.PendingLight
		}
		ctx.SetLightDirection(lightDir)

		worldBox := raster.TransformAABB(modelBox, ctx.GetModelMatrix())
		sphereCenter := worldBox.Center()
		sphereRadius := worldBox.Extents().Len()
		viewProj := ctx.GetProjectionMatrix().Mul(ctx.GetViewMatrix().Mul(ctx.GetModelMatrix()))
		frustum := raster.ExtractFrustum(viewProj)

		visible := frustum.IntersectsSphere(sphereCenter, sphereRadius) && frustum.IntersectsFrustum(worldBox)
		if !frustum.ContainsPoint(sphereCenter) {
			slog.Debug("model center outside view frustum")
		}
		if worldBox.ContainsPoint(orbit.Eye()) {
			slog.Debug("camera is inside the model bounds")
		}

		if visible {
			switch viewState.RenderMode {
			case RenderModeWireframe:
				present.NewWireframe(ctx, fb).DrawMesh(packed, present.ColorGreen)
			case RenderModeFlat:
				ctx.DrawMesh(packed, raster.GouraudShading, false)
			default:
				if viewState.TextureEnabled {
					packed.SetTexture(tex)
					ctx.DrawMesh(packed, raster.GouraudShading|raster.TextureShading, true)
				} else {
					ctx.DrawMesh(packed, raster.GouraudShading, false)
				}
			}
		} else {
			slog.Debug("model outside view frustum, skipping draw")
		}

		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, viewState)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
