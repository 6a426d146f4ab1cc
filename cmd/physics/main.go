package main

import (
	"context"
	"fmt"
	"image/png"
	"math"
	"os"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/saintsjh/PortfolioWebsite/internal/config"
	"github.com/saintsjh/PortfolioWebsite/internal/input"
	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/lifecycle"
	"github.com/saintsjh/PortfolioWebsite/internal/physics"
	"github.com/saintsjh/PortfolioWebsite/internal/protocol"
	"github.com/saintsjh/PortfolioWebsite/internal/render"
	"github.com/saintsjh/PortfolioWebsite/internal/tui"
	"github.com/saintsjh/PortfolioWebsite/internal/worker"
)

var (
	presetsFile string
	fontPath    string
	width       int
	height      int
	compact     bool
	blocks      bool
	seed        int64
	fps         int
	// render
	frames   int
	out      string
	painter  string
	mouseX   float64
	mouseY   float64
	down     bool
	mobile   bool
	termCols int
	termRows int
	// bench
	activeTicks int
	maxTicks    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "physics",
		Short: "portfolio physics tools",
	}
	rootCmd.PersistentFlags().StringVar(&presetsFile, "presets", "", "presets file (yaml)")
	rootCmd.PersistentFlags().IntVar(&width, "width", 1280, "viewport width")
	rootCmd.PersistentFlags().IntVar(&height, "height", 720, "viewport height")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "interactive terminal preview",
		RunE:  runPreview,
	}
	previewCmd.Flags().StringVar(&fontPath, "font", "", "regular font file (ttf/otf)")
	previewCmd.Flags().BoolVar(&compact, "compact", false, "compact breakpoint")
	previewCmd.Flags().BoolVar(&blocks, "blocks", false, "one body per content block")
	previewCmd.Flags().IntVar(&fps, "fps", 30, "frame rate")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render the particle field to png",
		RunE:  runRender,
	}
	renderCmd.Flags().IntVar(&frames, "frames", 120, "frames to simulate")
	renderCmd.Flags().StringVar(&out, "out", "field.png", "output file")
	renderCmd.Flags().StringVar(&painter, "painter", "canvas", "canvas, raster or terminal")
	renderCmd.Flags().Float64Var(&mouseX, "x", -1, "pointer x (default centre)")
	renderCmd.Flags().Float64Var(&mouseY, "y", -1, "pointer y (default centre)")
	renderCmd.Flags().BoolVar(&down, "down", false, "pointer held down")
	renderCmd.Flags().BoolVar(&mobile, "mobile", false, "mobile particle density")
	renderCmd.Flags().IntVar(&termCols, "cols", 100, "terminal painter columns")
	renderCmd.Flags().IntVar(&termRows, "rows", 30, "terminal painter rows")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "activate, stir and settle the character view",
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&fontPath, "font", "", "regular font file (ttf/otf)")
	benchCmd.Flags().BoolVar(&compact, "compact", false, "compact breakpoint")
	benchCmd.Flags().BoolVar(&blocks, "blocks", false, "one body per content block")
	benchCmd.Flags().IntVar(&activeTicks, "active", 180, "active ticks before stopping")
	benchCmd.Flags().IntVar(&maxTicks, "max-settle", 600, "settle tick limit")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "print resolved presets as yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := loadPresets()
			if err != nil {
				return err
			}
			return ps.Encode(os.Stdout)
		},
	}

	rootCmd.AddCommand(previewCmd, renderCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadPresets() (config.Presets, error) {
	cfg := config.PhysicsFromEnv()
	if presetsFile != "" {
		cfg.PresetsFile = presetsFile
	}
	return cfg.LoadPresets()
}

func viewport() layout.Viewport {
	return layout.Viewport{Width: float64(width), Height: float64(height), Compact: compact}
}

// newController builds a controller over the home content and waits for
// fonts so the first tick measures.
func newController(ctx context.Context) (*lifecycle.Controller, error) {
	ps, err := loadPresets()
	if err != nil {
		return nil, err
	}

	opts := lifecycle.DefaultOptions()
	opts.Seed = seed
	opts.Params = ps.Characters
	if blocks {
		p, err := ps.Get(physics.PresetBlocks)
		if err != nil {
			return nil, err
		}
		opts.Mode = lifecycle.ModeBlocks
		opts.Params = func(bool) physics.Params { return p }
	}

	fonts := layout.LoadFonts(fontPath)
	if err := fonts.Wait(ctx); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	ctrl := lifecycle.NewController(layout.NewMeasurer(fonts), opts)
	ctrl.SetContent(layout.HomeContent())
	return ctrl, nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(cmd.Context())
	if err != nil {
		return err
	}
	return tui.Run(ctrl, viewport(), fps)
}

func runRender(cmd *cobra.Command, args []string) error {
	ps, err := loadPresets()
	if err != nil {
		return err
	}
	p, err := ps.Get(physics.PresetField)
	if err != nil {
		return err
	}

	var pt render.Painter
	switch painter {
	case "canvas":
		pt = render.NewCanvas(width, height)
	case "raster":
		pt = render.NewRaster(width, height)
	case "terminal":
	default:
		return fmt.Errorf("unknown painter %q", painter)
	}

	mouse := protocol.UpdateMouse{
		MousePos:    protocol.Point{X: float64(width) / 2, Y: float64(height) / 2},
		IsMouseDown: down,
	}
	if mouseX >= 0 {
		mouse.MousePos.X = mouseX
	}
	if mouseY >= 0 {
		mouse.MousePos.Y = mouseY
	}
	msgs := []protocol.Message{
		protocol.Init{Width: float64(width), Height: float64(height), IsMobile: mobile},
		mouse,
	}

	opts := worker.DefaultOptions()
	opts.Params = p
	opts.Seed = seed

	start := time.Now()
	var particles int
	var text string
	err = worker.Run(cmd.Context(), opts, msgs, frames, func(last worker.Render) error {
		particles = last.Particles.Len()
		if pt == nil {
			var err error
			text, err = render.NewTerminal(termCols, termRows).Particles(last.Particles, float64(width), float64(height))
			return err
		}
		return pt.Draw(last.Particles)
	})
	if err != nil {
		return err
	}

	if pt == nil {
		fmt.Println(text)
		fmt.Printf("%d particles, %d frames in %v\n", particles, frames, time.Since(start).Round(time.Millisecond))
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, pt.Image()); err != nil {
		return err
	}

	fmt.Printf("%d particles, %d frames in %v -> %s\n", particles, frames, time.Since(start).Round(time.Millisecond), out)
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(cmd.Context())
	if err != nil {
		return err
	}
	vp := viewport()
	ctrl.SetViewport(vp)

	start := time.Now()
	ctrl.Tick()
	if ctrl.State() != lifecycle.Settled {
		return fmt.Errorf("measurement did not settle: state %s", ctrl.State())
	}
	measured := time.Since(start)

	if err := ctrl.ActivatePhysics(); err != nil {
		return err
	}

	// circle the pointer around the middle, held down for the first half
	tracker := ctrl.Tracker()
	energy := make([]float64, 0, activeTicks+maxTicks)
	cx, cy := vp.Width/2, vp.Height/2
	r := math.Min(vp.Width, vp.Height) / 4
	tracker.Handle(input.Event{Type: input.PointerDown, X: cx + r, Y: cy})

	start = time.Now()
	for i := 0; i < activeTicks; i++ {
		a := float64(i) / 30
		ev := input.Event{Type: input.PointerMove, X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
		if i == activeTicks/2 {
			ev.Type = input.PointerUp
		}
		tracker.Handle(ev)
		ctrl.Tick()
		energy = append(energy, ctrl.Energy())
	}
	active := time.Since(start)
	grid := ctrl.GridStats()

	ctrl.StopPhysics()
	settleTicks := 0
	start = time.Now()
	for ctrl.State() == lifecycle.Settling && settleTicks < maxTicks {
		ctrl.Tick()
		settleTicks++
		energy = append(energy, ctrl.Energy())
	}
	settling := time.Since(start)

	st := ctrl.Status()
	fmt.Printf("bodies:   %d\n", st.Bodies)
	fmt.Printf("grid:     %dx%d cells of %.0fpx, %d occupied, max %d, avg %.1f\n",
		grid.Cols, grid.Rows, grid.CellSize, grid.NonEmptyCells, grid.MaxInCell, grid.AvgPerNonEmpty)
	fmt.Printf("measure:  %v\n", measured.Round(time.Microsecond))
	fmt.Printf("active:   %d ticks, %v/tick\n", activeTicks, perTick(active, activeTicks))
	fmt.Printf("settle:   %d ticks, %v/tick (state %s)\n", settleTicks, perTick(settling, settleTicks), st.State)
	fmt.Println()
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy per tick")))
	return nil
}

func perTick(d time.Duration, n int) time.Duration {
	if n == 0 {
		return 0
	}
	return (d / time.Duration(n)).Round(time.Microsecond)
}
