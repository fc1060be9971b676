package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Dialog asks confirmations on a terminal and prints alerts.
// It reads from the same reader as the command loop so answers and commands
// do not race for input.
type Dialog struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

// NewDialog creates a Dialog reading answers from in, prompting on out and
// writing alerts to errOut.
func NewDialog(in *bufio.Reader, out, errOut io.Writer) *Dialog {
	return &Dialog{in: in, out: out, errOut: errOut}
}

// Confirm prints message and reads a y/N answer. Anything but y or yes,
// including end of input, declines.
func (d *Dialog) Confirm(message string) bool {
	fmt.Fprintf(d.out, "%s [y/N]: ", message)
	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(d.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Alert writes message to the error stream.
func (d *Dialog) Alert(message string) {
	fmt.Fprintf(d.errOut, "! %s\n", message)
}
