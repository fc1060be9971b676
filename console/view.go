package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/nomis52/clubsignup/page"
	"github.com/nomis52/clubsignup/render"
)

// PrintView writes the activity list as plain text.
func PrintView(w io.Writer, snap page.Snapshot) {
	switch {
	case snap.ListHTML == render.LoadFailedHTML:
		fmt.Fprintln(w, "Failed to load activities. Please try again later.")
		return
	case snap.ListHTML == page.LoadingHTML:
		fmt.Fprintln(w, "Loading activities...")
		return
	case len(snap.Cards) == 0:
		fmt.Fprintln(w, "No activities.")
		return
	}

	for i, c := range snap.Cards {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, c.Name)
		fmt.Fprintf(w, "  %s\n", c.Description)
		fmt.Fprintf(w, "  Schedule: %s\n", c.Schedule)
		fmt.Fprintf(w, "  Availability: %d spots left\n", c.SpotsLeft)
		fmt.Fprintf(w, "  Participants (%d):\n", len(c.Participants))
		if len(c.Participants) == 0 {
			fmt.Fprintf(w, "    %s\n", render.NoParticipantsText)
			continue
		}
		for _, p := range c.Participants {
			fmt.Fprintf(w, "    - %s\n", p)
		}
	}
}

// PrintMessage writes the message area, e.g. "[success] Signed up ...".
func PrintMessage(w io.Writer, msg page.Message) {
	if msg.Class == "" {
		fmt.Fprintln(w, "(no message)")
		return
	}
	fmt.Fprintf(w, "[%s] %s\n", strings.ReplaceAll(msg.ClassName(), " ", ","), msg.Text)
}
