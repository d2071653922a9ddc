package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// SelectCommandWithFzf displays the commands in fzf and returns the selected command name.
func SelectCommandWithFzf(commands []CommandSpec) (string, error) {
	var b strings.Builder
	for _, c := range commands {
		// format as "name: description"
		b.WriteString(fmt.Sprintf("%s: %s\n", c.Name, c.Description))
	}

	cmd := exec.Command("fzf", "--prompt=Command> ")
	cmd.Stdin = strings.NewReader(b.String())
	cmd.Stderr = os.Stderr

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf: %w", err)
	}

	name, _, _ := strings.Cut(strings.TrimSpace(out.String()), ":")
	if name = strings.TrimSpace(name); name != "" {
		return name, nil
	}
	return "", fmt.Errorf("no command selected")
}

// SelectFileWithFzf lists image files under startDir in fzf and returns the
// selected path. It needs find and fzf on PATH. The preview pane uses kitty
// icat in kitty-compatible terminals and chafa elsewhere.
func SelectFileWithFzf(startDir string) (string, error) {
	previewCmd := "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	if isKitty() {
		previewCmd = "printf \"\\x1b_Ga=d\\x1b\\\\\"; kitty +kitten icat --silent {} 2>/dev/null || " + previewCmd
	} else if isInlineImageCapable() {
		previewCmd = "imgcat {} 2>/dev/null || " + previewCmd
	}

	cmdStr := fmt.Sprintf(
		"find %s -type f \\( -iname '*.png' -o -iname '*.jpg' -o -iname '*.jpeg' -o -iname '*.gif' -o -iname '*.bmp' -o -iname '*.tif' -o -iname '*.tiff' -o -iname '*.webp' \\) | fzf --height 100%% --border --prompt='Files> ' --ansi --preview=%q --preview-window='right:60%%'",
		strconv.Quote(startDir),
		previewCmd,
	)
	cmd := exec.Command("bash", "-lc", cmdStr)
	cmd.Stderr = os.Stderr

	var out bytes.Buffer
	cmd.Stdout = &out

	err := cmd.Run()
	// the previewer may leave kitty images behind
	clearKittyImages()
	if err != nil {
		return "", fmt.Errorf("error running fzf for files: %w", err)
	}

	selection := strings.TrimSpace(out.String())
	if selection == "" {
		return "", fmt.Errorf("no file selected")
	}
	return selection, nil
}

// clearKittyImages emits the kitty graphics "delete" control sequence.
// Terminals that don't understand it will ignore it.
func clearKittyImages() {
	if isKitty() {
		fmt.Fprint(os.Stdout, "\x1b_Ga=d\x1b\\")
	}
}

// fzfAvailable reports whether fzf is on PATH.
func fzfAvailable() bool {
	_, err := exec.LookPath("fzf")
	return err == nil
}
