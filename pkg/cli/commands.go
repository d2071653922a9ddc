// Registry of canvas commands reachable from the REPL.
//
// Keep this list in step with ApplyCommand below so that the selection
// menu, the help text and argument normalization read a single source of
// truth.

package cli

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/Fepozopo/canvasfill/pkg/canvas"
	"github.com/Fepozopo/canvasfill/pkg/paint"
)

// ArgSpec describes a single argument for a command. Fields are textual
// and intended for help/validation UI rather than machine-enforced typing.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "uint", "bool", "enum", "color", "points", "string"
	Required    bool
	Default     string // textual default (for help only)
	Description string // for enums, the options separated by '|'
}

// CommandSpec defines a single command and its expected arguments.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
}

// Commands is the list of commands implemented by ApplyCommand.
var Commands = []CommandSpec{
	{
		Name: "fill",
		Args: []ArgSpec{
			{"x", "int", true, "", "seed x"},
			{"y", "int", true, "", "seed y"},
			{"color", "color", false, "bucket color", "fill color"},
			{"tolerance", "uint", false, "bucket tolerance", "per-channel tolerance, 0 for exact"},
		},
		Usage:       "fill <x> <y> [color] [tolerance]",
		Description: "Bucket fill the region around (x,y).",
	},
	{
		Name:        "click",
		Args:        []ArgSpec{{"x", "int", true, "", "x"}, {"y", "int", true, "", "y"}},
		Usage:       "click <x> <y>",
		Description: "Press at (x,y): a fill when the bucket tool is on, otherwise a dot.",
	},
	{
		Name:        "line",
		Args:        []ArgSpec{{"points", "points", true, "", "x,y pairs separated by spaces"}},
		Usage:       "line <x,y> <x,y> ...",
		Description: "Draw one stroke through the given points.",
	},
	{
		Name:        "point",
		Args:        []ArgSpec{{"x", "int", true, "", "x"}, {"y", "int", true, "", "y"}},
		Usage:       "point <x> <y>",
		Description: "Draw a single dot with the stroke color and width.",
	},
	{
		Name:        "background",
		Args:        []ArgSpec{{"color", "color", true, "", "background color"}, {"save", "bool", false, "true", "restore this color on clear"}},
		Usage:       "background <color> [save]",
		Description: "Repaint the canvas with a background color.",
	},
	{
		Name:        "color",
		Args:        []ArgSpec{{"color", "color", true, "", "stroke and bucket color"}},
		Usage:       "color <color>",
		Description: "Set the drawing color for strokes and the bucket tool.",
	},
	{
		Name:        "tolerance",
		Args:        []ArgSpec{{"tolerance", "uint", true, "", "per-channel tolerance, 0 for exact"}},
		Usage:       "tolerance <n>",
		Description: "Set the bucket tool tolerance.",
	},
	{
		Name:        "bucket",
		Args:        []ArgSpec{{"state", "enum", false, "toggle", "on|off|toggle"}},
		Usage:       "bucket [on|off|toggle]",
		Description: "Switch clicks between drawing and filling.",
	},
	{
		Name:        "mode",
		Args:        []ArgSpec{{"state", "enum", false, "toggle", "on|off|toggle"}},
		Usage:       "mode [on|off|toggle]",
		Description: "Enable or disable drawing input.",
	},
	{
		Name:        "strategy",
		Args:        []ArgSpec{{"strategy", "enum", true, "", "pixel|span"}},
		Usage:       "strategy <pixel|span>",
		Description: "Choose how the fill engine queues neighboring rows.",
	},
	{
		Name:        "width",
		Args:        []ArgSpec{{"px", "uint", true, "", "line width in pixels"}},
		Usage:       "width <px>",
		Description: "Set the stroke width.",
	},
	{
		Name:        "redraw",
		Args:        []ArgSpec{{"all", "bool", false, "true", "replay every stroke, not only the last"}},
		Usage:       "redraw [all]",
		Description: "Replay recorded strokes over the canvas.",
	},
	{
		Name:        "clear",
		Args:        []ArgSpec{},
		Usage:       "clear",
		Description: "Drop all strokes and repaint the saved background.",
	},
	{
		Name:        "info",
		Args:        []ArgSpec{},
		Usage:       "info",
		Description: "Show canvas size, colors and tool state.",
	},
}

var defaultStore = NewMetaStore(Commands)

// ApplyCommand runs a normalized command against c and returns a short
// report for the user.
func ApplyCommand(ctx context.Context, c *canvas.Canvas, commandName string, args []string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("canvas is nil")
	}
	spec, ok := defaultStore.Lookup(commandName)
	if !ok {
		return "", fmt.Errorf("unknown command: %s", commandName)
	}
	if len(args) != len(spec.Args) {
		return "", fmt.Errorf("%s requires %d args: %s", commandName, len(spec.Args), spec.Usage)
	}
	switch commandName {
	case "fill":
		x, y, err := parseXY(args[0], args[1])
		if err != nil {
			return "", err
		}
		col, tol := c.Bucket()
		if args[2] != "" {
			if col, err = paint.ParseColor(args[2]); err != nil {
				return "", err
			}
		}
		if args[3] != "" {
			n, err := strconv.Atoi(args[3])
			if err != nil {
				return "", fmt.Errorf("invalid tolerance: %w", err)
			}
			tol = paint.Tolerance(n)
		}
		out, err := c.FillWith(ctx, x, y, col, tol)
		if err != nil {
			return "", err
		}
		msg := fmt.Sprintf("fill %s: %d pixels written in %d iterations", out.Result, out.Writes, out.Iterations)
		if out.GuardTripped {
			msg += " (stopped by work guard)"
		}
		return msg, nil

	case "click":
		x, y, err := parseXY(args[0], args[1])
		if err != nil {
			return "", err
		}
		if err := c.Click(ctx, x, y); err != nil {
			return "", err
		}
		return fmt.Sprintf("clicked (%d,%d)", x, y), nil

	case "line":
		pts, err := parsePoints(args[0])
		if err != nil {
			return "", err
		}
		ip := make([]image.Point, len(pts))
		for i, p := range pts {
			ip[i] = image.Pt(p[0], p[1])
		}
		if !c.DrawingModeEnabled() {
			return "drawing mode is off", nil
		}
		c.DrawPolyline(ip...)
		return fmt.Sprintf("stroke through %d points", len(ip)), nil

	case "point":
		x, y, err := parseXY(args[0], args[1])
		if err != nil {
			return "", err
		}
		if !c.DrawingModeEnabled() {
			return "drawing mode is off", nil
		}
		c.DrawPolyline(image.Pt(x, y))
		return fmt.Sprintf("point at (%d,%d)", x, y), nil

	case "background":
		col, err := paint.ParseColor(args[0])
		if err != nil {
			return "", err
		}
		save := args[1] != "false"
		c.SetBackground(col, save)
		return "background " + paint.FormatColor(paint.Opaque(col)), nil

	case "color":
		col, err := paint.ParseColor(args[0])
		if err != nil {
			return "", err
		}
		c.SetDrawingColor(col)
		return "drawing color " + paint.FormatColor(c.StrokeColor()), nil

	case "tolerance":
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid tolerance: %w", err)
		}
		if err := c.ConfigBucketTool(canvas.BucketConfig{Tolerance: &n}); err != nil {
			return "", err
		}
		return fmt.Sprintf("bucket tolerance %d", n), nil

	case "bucket":
		on := setState(args, c.BucketToolEnabled(), c.ToggleBucketTool)
		return "bucket tool " + onOff(on), nil

	case "mode":
		on := setState(args, c.DrawingModeEnabled(), c.ToggleDrawingMode)
		return "drawing mode " + onOff(on), nil

	case "strategy":
		s, err := paint.ParseStrategy(args[0])
		if err != nil {
			return "", err
		}
		c.SetStrategy(s)
		return "fill strategy " + s.String(), nil

	case "width":
		px, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid width: %w", err)
		}
		if px <= 0 {
			return "", fmt.Errorf("line width must be positive, got %d", px)
		}
		c.SetLineWidth(px)
		return fmt.Sprintf("line width %d", px), nil

	case "redraw":
		all := args[0] != "false"
		c.Redraw(all)
		return "redrawn", nil

	case "clear":
		c.Clear()
		return "cleared", nil

	case "info":
		return GetCanvasInfo(c), nil
	}
	return "", fmt.Errorf("unknown command: %s", commandName)
}

func parseXY(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y: %w", err)
	}
	return x, y, nil
}

// setState applies an on/off/toggle argument through a toggle function.
func setState(args []string, current bool, toggle func() bool) bool {
	want := "toggle"
	if len(args) > 0 && args[0] != "" {
		want = args[0]
	}
	switch want {
	case "on":
		if !current {
			return toggle()
		}
		return true
	case "off":
		if current {
			return toggle()
		}
		return false
	}
	return toggle()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// GetCanvasInfo returns a short multi-line summary of the canvas state.
func GetCanvasInfo(c *canvas.Canvas) string {
	w, h := c.Size()
	col, tol := c.Bucket()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Size: %dx%d\n", w, h)
	fmt.Fprintf(&sb, "Background: %s\n", paint.FormatColor(c.Background()))
	fmt.Fprintf(&sb, "Stroke: %s, width %d\n", paint.FormatColor(c.StrokeColor()), c.LineWidth())
	fmt.Fprintf(&sb, "Bucket: %s, tolerance %d, %s\n", paint.FormatColor(col), tol, onOff(c.BucketToolEnabled()))
	fmt.Fprintf(&sb, "Strategy: %s\n", c.Strategy())
	fmt.Fprintf(&sb, "Drawing mode: %s\n", onOff(c.DrawingModeEnabled()))
	fmt.Fprintf(&sb, "Strokes: %d, pristine: %v", len(c.Strokes()), c.Pristine())
	return sb.String()
}
