package cli

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	// imaging registers JPEG, PNG, GIF, TIFF and BMP; WebP is decode-only.
	_ "golang.org/x/image/webp"
)

// PromptLine displays a prompt and reads a full line of input from r.
// The returned string is trimmed of surrounding whitespace (including the newline).
// A final line without a newline is returned without error.
func PromptLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// LoadImage decodes the image at path, applying any EXIF orientation, and
// returns it with a lowercase format name guessed from the extension.
func LoadImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return img, imageFormat(path), nil
}

func imageFormat(path string) string {
	if f, err := imaging.FormatFromFilename(path); err == nil {
		return strings.ToLower(f.String())
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// SaveImage writes img to path in the format named by its extension
// (.png, .jpg/.jpeg, .gif, .tif/.tiff, .bmp). Other extensions get PNG.
func SaveImage(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	if _, err := imaging.FormatFromFilename(path); err == nil {
		return imaging.Save(img, path, imaging.JPEGQuality(92))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GetImageInfoImage returns a short info string for an image.Image.
func GetImageInfoImage(img image.Image, format string) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}
	b := img.Bounds()
	if format == "" {
		format = "unknown"
	}
	return fmt.Sprintf("Format: %s, Width: %d, Height: %d", strings.ToUpper(format), b.Dx(), b.Dy()), nil
}
