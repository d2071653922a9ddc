package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/Fepozopo/canvasfill/pkg/canvas"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Commands available:")
	fmt.Fprintln(w, "  /  - select and apply command (or type it: /fill 10 10 red 0)")
	fmt.Fprintln(w, "  o  - open an image onto the canvas")
	fmt.Fprintln(w, "  s  - save the canvas")
	fmt.Fprintln(w, "  u  - check for updates")
	fmt.Fprintln(w, "  h  - show this help message")
	fmt.Fprintln(w, "  q  - quit")
}

// Session is one interactive editing session over a canvas.
type Session struct {
	canvas *canvas.Canvas
	store  *MetaStore
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	// Interactive enables fzf selection; Preview shows the canvas inline
	// after every command that changed it.
	Interactive bool
	Preview     bool

	changed atomic.Bool
}

// NewSession reads commands from in and reports to out and errOut. It
// registers a redraw listener on c to know when a preview is due.
func NewSession(c *canvas.Canvas, in io.Reader, out, errOut io.Writer) *Session {
	s := &Session{
		canvas: c,
		store:  NewMetaStore(Commands),
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
	_ = c.On(canvas.EventRedraw, 0, func() { s.changed.Store(true) })
	return s
}

func (s *Session) prompt(label string) (string, error) {
	return PromptLine(s.in, s.out, label)
}

// RunCLI builds a canvas from cfg, opens the image named by args[0] if
// any, and runs a session on the terminal.
func RunCLI(ctx context.Context, cfg Config, args []string) error {
	opts, err := cfg.CanvasOptions()
	if err != nil {
		return err
	}
	c, err := canvas.New(opts)
	if err != nil {
		return err
	}
	s := NewSession(c, os.Stdin, os.Stdout, os.Stderr)
	s.Interactive = term.IsTerminal(int(os.Stdin.Fd()))
	s.Preview = cfg.Preview && PreviewSupported()

	if len(args) > 0 && args[0] != "" {
		if err := s.open(args[0]); err != nil {
			return err
		}
	}
	fmt.Fprintln(s.out, "Canvas Fill")
	usage(s.out)
	return s.Run(ctx)
}

// Run reads one key per line until q or the end of input.
func (s *Session) Run(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, "> ")
		line, err := s.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read input error: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rest := strings.TrimSpace(line[1:])

		switch line[0] {
		case '/':
			if err := s.runCommand(ctx, rest); err != nil {
				fmt.Fprintf(s.errOut, "%v\n", err)
			}

		case 'o':
			if err := s.open(rest); err != nil {
				fmt.Fprintf(s.errOut, "%v\n", err)
			}

		case 's':
			if err := s.save(rest); err != nil {
				fmt.Fprintf(s.errOut, "failed to write image: %v\n", err)
			}

		case 'u':
			if err := CheckForUpdates(s.prompt); err != nil {
				fmt.Fprintf(s.errOut, "update check error: %v\n", err)
			}

		case 'h':
			usage(s.out)

		case 'q':
			fmt.Fprintln(s.out, "Exiting...")
			return nil

		default:
			fmt.Fprintf(s.out, "unknown key %q, press h for help\n", line[0])
		}
	}
}

// selectCommand asks for a command name through fzf or a numbered list.
func (s *Session) selectCommand() (string, error) {
	if s.Interactive && fzfAvailable() {
		if name, err := SelectCommandWithFzf(s.store.Commands); err == nil && name != "" {
			return name, nil
		}
		// fall through to the textual list
	}
	fmt.Fprintln(s.out, "Command selection:")
	for i, c := range s.store.Commands {
		fmt.Fprintf(s.out, "  %d) %s - %s\n", i+1, c.Name, c.Description)
	}
	selection, err := s.prompt("Enter number or command name (leave empty to cancel): ")
	if err != nil {
		return "", err
	}
	if selection == "" {
		return "", nil
	}
	if idx, perr := strconv.Atoi(selection); perr == nil {
		if idx < 1 || idx > len(s.store.Commands) {
			return "", fmt.Errorf("invalid selection")
		}
		return s.store.Commands[idx-1].Name, nil
	}
	return s.store.Resolve(selection)
}

// runCommand runs "name arg..." from the command line, or selects a command
// and prompts for each argument when line is empty.
func (s *Session) runCommand(ctx context.Context, line string) error {
	var (
		name    string
		rawArgs []string
		err     error
	)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		if name, err = s.selectCommand(); err != nil {
			return err
		}
		if name == "" {
			fmt.Fprintln(s.out, "selection cancelled")
			return nil
		}
	} else if name, err = s.store.Resolve(fields[0]); err != nil {
		return err
	}
	spec, _ := s.store.Lookup(name)

	if len(fields) > 1 {
		rawArgs = fields[1:]
		// the last parameter takes whatever is left, so "line" gets every point
		if n := len(spec.Args); n > 0 && len(rawArgs) > n {
			rawArgs = append(rawArgs[:n-1], strings.Join(rawArgs[n-1:], " "))
		}
	} else if len(spec.Args) > 0 {
		tooltip, _, _ := s.store.GetCommandHelp(name)
		fmt.Fprintln(s.out, "\n"+tooltip+"\n")
		rawArgs = make([]string, len(spec.Args))
		for i, p := range spec.Args {
			typeLabel := p.Type
			if p.Type == "enum" {
				typeLabel = fmt.Sprintf("enum(%s)", p.Description)
			}
			val, perr := s.prompt(fmt.Sprintf("%s (%s): ", p.Name, typeLabel))
			if perr != nil {
				return fmt.Errorf("input error: %w", perr)
			}
			rawArgs[i] = val
		}
	}

	normArgs, err := NormalizeArgs(s.store, name, rawArgs)
	if err != nil {
		return fmt.Errorf("input validation error: %w", err)
	}
	s.changed.Store(false)
	msg, err := ApplyCommand(ctx, s.canvas, name, normArgs)
	// partial changes from an interrupted command still get shown
	s.preview()
	if err != nil {
		return fmt.Errorf("apply command error: %w", err)
	}
	fmt.Fprintln(s.out, msg)
	return nil
}

func (s *Session) preview() {
	if !s.Preview || !s.changed.Swap(false) {
		return
	}
	if err := PreviewImage(s.out, s.canvas.Image()); err != nil {
		debugf("preview failed: %v", err)
	}
}

// open draws an image file over the canvas.
func (s *Session) open(path string) error {
	if path == "" && s.Interactive && fzfAvailable() {
		path, _ = SelectFileWithFzf(".")
	}
	if path == "" {
		p, err := s.prompt("Enter path to image to open (leave empty to cancel): ")
		if err != nil {
			return err
		}
		if p == "" {
			fmt.Fprintln(s.out, "open cancelled")
			return nil
		}
		path = p
	}
	img, format, err := LoadImage(path)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", path, err)
	}
	if err := s.canvas.Restore(img); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Opened %s\n", path)
	if info, ierr := GetImageInfoImage(img, format); ierr == nil {
		fmt.Fprintln(s.out, info)
	}
	w, h := s.canvas.Size()
	if b := img.Bounds(); b.Dx() > w || b.Dy() > h {
		fmt.Fprintf(s.out, "image cropped to the %dx%d canvas\n", w, h)
	}
	s.changed.Store(true)
	s.preview()
	return nil
}

func (s *Session) save(path string) error {
	if path == "" {
		p, err := s.prompt("Enter output filename: ")
		if err != nil {
			return err
		}
		path = p
	}
	if path == "" {
		fmt.Fprintln(s.out, "no filename provided")
		return nil
	}
	if err := SaveImage(path, s.canvas.Image()); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved to %s\n", path)
	return nil
}
