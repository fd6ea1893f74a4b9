package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinesUsed(t *testing.T) {
	tests := []struct {
		n, cols, want int
	}{
		{n: 0, cols: 80, want: 2},
		{n: 10, cols: 80, want: 2},
		{n: 80, cols: 80, want: 2},
		{n: 81, cols: 80, want: 3},
		{n: 200, cols: 0, want: 4},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, linesUsed(tt.n, tt.cols), "n=%d cols=%d", tt.n, tt.cols)
	}
}

func TestClearLines(t *testing.T) {
	var buf bytes.Buffer
	clearLines(&buf, 2)
	require.Equal(t, "\r\x1b[2K\x1b[1A\r\x1b[2K", buf.String())
}

func TestPrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompterFrom(strings.NewReader("a@x.com\n\nhunter2 \n"), &out)

	email, err := p.Line("Email", "")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", email)

	name, err := p.Line("Name", "A")
	require.NoError(t, err)
	require.Equal(t, "A", name)

	secret, err := p.Secret("Password")
	require.NoError(t, err)
	require.Equal(t, "hunter2 ", secret, "secrets are not trimmed")

	_, err = p.Line("Email", "")
	require.ErrorIs(t, err, ErrNoInput)
	require.Contains(t, out.String(), "Name [A]: ")
}
