package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/term"
)

// Inline canvas preview for kitty-compatible terminals and terminals that
// speak the iTerm2 OSC 1337 inline-image protocol. The canvas is scaled down
// to fit the terminal, encoded as PNG, and written as an escape sequence.
// PREVIEW_BACKEND=kitty|inline forces a backend.

var previewDebug bool

// SetDebug turns debugf output on or off.
func SetDebug(on bool) { previewDebug = on }

// DebugFromEnv reports whether CANVASFILL_DEBUG asks for debug output.
func DebugFromEnv() bool {
	v, err := parseBoolLikeToString(os.Getenv("CANVASFILL_DEBUG"))
	return err == nil && v == "true"
}

func debugf(format string, args ...interface{}) {
	if previewDebug {
		fmt.Fprintf(os.Stderr, "canvasfill: "+format+"\n", args...)
	}
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	// ghostty implements the kitty graphics protocol
	t := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(t, "kitty") || strings.Contains(t, "ghostty") {
		return true
	}
	return os.Getenv("KONSOLE_VERSION") != ""
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby", "Bobcat":
		debugf("TERM_PROGRAM indicates inline-capable: %s", os.Getenv("TERM_PROGRAM"))
		return true
	}
	t := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(t, "wezterm") || strings.Contains(t, "tabby") || strings.Contains(t, "vscode") {
		debugf("TERM suggests inline-capable: %s", t)
		return true
	}
	return os.Getenv("ITERM_SESSION_ID") != ""
}

func previewBackend() string {
	switch b := strings.ToLower(os.Getenv("PREVIEW_BACKEND")); b {
	case "kitty", "inline":
		return b
	case "":
	default:
		debugf("unknown PREVIEW_BACKEND value: %s", b)
	}
	switch {
	case isKitty():
		return "kitty"
	case isInlineImageCapable():
		return "inline"
	}
	return ""
}

// PreviewSupported reports whether stdout is a terminal with a known image
// protocol.
func PreviewSupported() bool {
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	backend := previewBackend()
	debugf("PreviewSupported: tty=%v backend=%q", tty, backend)
	return tty && backend != ""
}

// PreviewSize is a placement in terminal cells plus the pixel box the
// thumbnail is fitted into.
type PreviewSize struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

const (
	cellWidth  = 8
	cellHeight = 16
	maxCols    = 80
	maxRows    = 40
	minCols    = 6
	minRows    = 3
)

// computePreviewSize fits a w×h image into at most termCols×termRows cells
// (half the terminal height) without scaling up.
func computePreviewSize(w, h, termCols, termRows int) PreviewSize {
	if w <= 0 || h <= 0 {
		return PreviewSize{Cols: minCols, Rows: minRows, PixelWidth: 1, PixelHeight: 1}
	}
	cols, rows := maxCols, maxRows
	if termCols > 0 && termCols < cols {
		cols = termCols
	}
	if termRows > 0 && termRows/2 < rows {
		rows = termRows / 2
	}
	boxW, boxH := cols*cellWidth, rows*cellHeight
	if w < boxW {
		boxW = w
	}
	if h < boxH {
		boxH = h
	}
	// keep the aspect ratio inside the box
	if w*boxH > h*boxW {
		boxH = max(1, h*boxW/w)
	} else {
		boxW = max(1, w*boxH/h)
	}
	size := PreviewSize{
		Cols:        max(minCols, (boxW+cellWidth-1)/cellWidth),
		Rows:        max(minRows, (boxH+cellHeight-1)/cellHeight),
		PixelWidth:  boxW,
		PixelHeight: boxH,
	}
	return size
}

func terminalSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		debugf("terminal size unavailable: %v", err)
		return 0, 0
	}
	return cols, rows
}

// PreviewImage writes img to w as an inline terminal image.
func PreviewImage(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	backend := previewBackend()
	if backend == "" {
		return fmt.Errorf("no supported terminal image protocol")
	}
	b := img.Bounds()
	cols, rows := terminalSize()
	size := computePreviewSize(b.Dx(), b.Dy(), cols, rows)
	thumb := imaging.Fit(img, size.PixelWidth, size.PixelHeight, imaging.Box)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	debugf("preview %dx%d -> %dx%d (%d cols, %d rows) via %s",
		b.Dx(), b.Dy(), size.PixelWidth, size.PixelHeight, size.Cols, size.Rows, backend)
	if backend == "kitty" {
		return sendKittyImage(w, buf.Bytes(), size)
	}
	return sendInlineImage(w, buf.Bytes(), size)
}

// sendKittyImage transmits PNG data with the kitty graphics protocol in
// base64 chunks of at most 4096 bytes.
func sendKittyImage(w io.Writer, data []byte, size PreviewSize) error {
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			// a=T transmit and display, f=100 PNG, q=2 no replies
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(w, seq); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func sendInlineImage(w io.Writer, data []byte, size PreviewSize) error {
	enc := base64.StdEncoding.EncodeToString(data)
	seq := fmt.Sprintf("\x1b]1337;File=name=canvas.png;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n",
		len(data), size.PixelWidth, size.PixelHeight, enc)
	n, err := io.WriteString(w, seq)
	debugf("wrote %d bytes for inline image (err=%v)", n, err)
	return err
}
