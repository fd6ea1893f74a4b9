// Package terminal holds the small terminal helpers the commands share:
// reading prompted input, reading secrets without echo, and wiping prompts
// from the screen once answered.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ClearPreviousLines erases a prompt and its answer from stdout. textLength is
// the prompt plus input length; wrapping is computed from the terminal width.
func ClearPreviousLines(textLength int) {
	clearLines(os.Stdout, linesUsed(textLength, width()))
}

func width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// linesUsed returns how many rows text of n runes occupied after Enter was
// pressed: the wrapped rows plus the empty row the cursor moved to.
func linesUsed(n, cols int) int {
	if cols <= 0 {
		cols = 80
	}
	rows := (n + cols - 1) / cols
	if rows < 1 {
		rows = 1
	}
	return rows + 1
}

func clearLines(w io.Writer, n int) {
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
