package page

// Dialog is the page's blocking user prompt channel.
type Dialog interface {
	// Confirm asks a yes/no question and reports whether the user agreed.
	Confirm(message string) bool
	// Alert shows message to the user.
	Alert(message string)
}

type declineDialog struct{}

func (declineDialog) Confirm(string) bool { return false }
func (declineDialog) Alert(string)        {}
