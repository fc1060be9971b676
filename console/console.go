// Package console is the interactive terminal surface of the signup client.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nomis52/clubsignup/page"
)

const helpText = `Commands:
  list                               reload and show activities
  signup <email> <activity...>       sign up for an activity
  unregister <email> <activity...>   unregister a participant
  message                            show the message area
  help                               show this help
  quit                               exit`

// Console reads commands and drives a page.
type Console struct {
	page   *page.Page
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	html   bool
}

// Option configures a Console.
type Option func(*Console)

// WithHTML prints the list markup instead of the text view.
func WithHTML(html bool) Option {
	return func(c *Console) { c.html = html }
}

// New creates a Console. in must be the reader the page's Dialog uses.
func New(p *page.Page, in *bufio.Reader, out, errOut io.Writer, opts ...Option) *Console {
	c := &Console{page: p, in: in, out: out, errOut: errOut}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run loads the activities, prints them and processes commands until quit,
// end of input or ctx is done. It returns ctx.Err() when ctx ends, even while
// waiting at the prompt.
func (c *Console) Run(ctx context.Context) error {
	c.list(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "> ")
		line, err := c.readLine(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			fmt.Fprintln(c.out)
			return ctxErr
		}
		if line != "" {
			if quit := c.Exec(ctx, line); quit {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading command: %w", err)
		}
	}
}

type readResult struct {
	line string
	err  error
}

// readLine reads one line from the input, giving up when ctx is done. The
// abandoned read keeps the reader until its line arrives, so nothing may read
// c.in after Run returns early.
func (c *Console) readLine(ctx context.Context) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

// Exec runs one command line and reports whether the console should exit.
func (c *Console) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "list", "ls":
		c.list(ctx)
	case "signup":
		c.signup(ctx, args)
	case "unregister", "rm":
		c.unregister(ctx, args)
	case "message", "msg":
		PrintMessage(c.out, c.page.Snapshot().Message)
	case "help", "?":
		fmt.Fprintln(c.out, helpText)
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(c.errOut, "unknown command %q, try help\n", cmd)
	}
	return false
}

func (c *Console) list(ctx context.Context) {
	_ = c.page.FetchActivities(ctx)
	c.printView()
}

func (c *Console) printView() {
	snap := c.page.Snapshot()
	if c.html {
		fmt.Fprintln(c.out, snap.ListHTML)
		return
	}
	PrintView(c.out, snap)
}

func (c *Console) signup(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.errOut, "usage: signup <email> <activity...>")
		return
	}
	email, activity := args[0], strings.Join(args[1:], " ")

	if err := c.page.SelectActivity(activity); err != nil {
		fmt.Fprintf(c.errOut, "unknown activity %q, run list to refresh\n", activity)
		return
	}
	c.page.SetEmail(email)

	err := c.page.Submit(ctx)
	PrintMessage(c.out, c.page.Snapshot().Message)
	if err == nil {
		c.printView()
	}
}

func (c *Console) unregister(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.errOut, "usage: unregister <email> <activity...>")
		return
	}
	email, activity := args[0], strings.Join(args[1:], " ")

	before := c.page.Snapshot().ListHTML
	err := c.page.ClickDelete(ctx, activity, email)
	if errors.Is(err, page.ErrNotRendered) {
		fmt.Fprintf(c.errOut, "%s is not listed under %q, run list to refresh\n", email, activity)
		return
	}
	if err == nil && c.page.Snapshot().ListHTML != before {
		c.printView()
	}
}
