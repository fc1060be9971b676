// Package render turns an activity collection into markup.
//
// Render is pure: the same collection always produces the same View, and the
// card list and the select options in a View come from one snapshot.
//
//	view := render.Render(activities)
//	list := view.ListHTML()   // contents of the activities list
//	opts := view.Options      // placeholder first, then one per activity
package render

import (
	"fmt"
	"strings"

	"github.com/nomis52/clubsignup/clients/activityclient"
)

const (
	// PlaceholderLabel is the label of the empty first select option.
	PlaceholderLabel = "-- Select an activity --"
	// NoParticipantsText is shown in place of an empty roster.
	NoParticipantsText = "No participants yet"
	// LoadFailedHTML replaces the list when activities could not be loaded.
	LoadFailedHTML = "<p>Failed to load activities. Please try again later.</p>"

	// CardClass marks an activity card.
	CardClass = "activity-card"
	// DeleteControlClass marks a participant's unregister button.
	DeleteControlClass = "delete-participant"
)

// Option is one entry of the activity select.
type Option struct {
	Value string
	Label string
}

// Placeholder is the select's first option.
var Placeholder = Option{Value: "", Label: PlaceholderLabel}

// Card is one rendered activity.
type Card struct {
	Name         string
	Description  string
	Schedule     string
	SpotsLeft    int
	Participants []string
	// Controls holds the delete control of each participant, in roster order.
	Controls []Element
	HTML     string
}

// Control returns the delete control for email.
func (c Card) Control(email string) (Element, bool) {
	for _, ctrl := range c.Controls {
		if ctrl.Data["email"] == email {
			return ctrl, true
		}
	}
	return Element{}, false
}

// ClickPath returns the bubbling path of a click on ctrl: the control itself,
// then each enclosing element up to the card.
func (c Card) ClickPath(ctrl Element) []Element {
	return []Element{
		ctrl,
		{Tag: "li"},
		{Tag: "ul", Class: "participants-list"},
		{Tag: "div", Class: "participants-section"},
		{Tag: "div", Class: CardClass, Data: map[string]string{"activity": c.Name}},
	}
}

// View is the result of rendering one snapshot.
type View struct {
	Cards   []Card
	Options []Option
}

// ListHTML returns the markup for the activities list.
func (v View) ListHTML() string {
	var b strings.Builder
	for _, c := range v.Cards {
		b.WriteString(c.HTML)
	}
	return b.String()
}

// Card returns the card for the named activity.
func (v View) Card(name string) (Card, bool) {
	for _, c := range v.Cards {
		if c.Name == name {
			return c, true
		}
	}
	return Card{}, false
}

// RenderOption customises rendering.
type RenderOption func(*options)

type options struct {
	deleteAction string
}

// WithDeleteAction turns each delete control into a submit button posting to
// action with activity and email query parameters, for pages without scripting.
func WithDeleteAction(action string) RenderOption {
	return func(o *options) {
		o.deleteAction = action
	}
}

// Render builds a View from activities. The select always starts with exactly
// one placeholder followed by one option per activity.
func Render(activities activityclient.Activities, opts ...RenderOption) View {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	view := View{
		Cards:   make([]Card, 0, len(activities)),
		Options: make([]Option, 0, len(activities)+1),
	}
	view.Options = append(view.Options, Placeholder)

	for _, a := range activities {
		view.Cards = append(view.Cards, renderCard(a, o))
		view.Options = append(view.Options, Option{Value: a.Name, Label: a.Name})
	}
	return view
}

func renderCard(a activityclient.Activity, o options) Card {
	participants := a.Participants
	if participants == nil {
		participants = []string{}
	}

	card := Card{
		Name:         a.Name,
		Description:  a.Description,
		Schedule:     a.Schedule,
		SpotsLeft:    a.SpotsLeft(),
		Participants: append([]string(nil), participants...),
		Controls:     make([]Element, 0, len(participants)),
	}

	var section strings.Builder
	fmt.Fprintf(&section, `<div class="participants-section"><strong>Participants (%d):</strong>`, len(participants))
	if len(participants) > 0 {
		section.WriteString(`<ul class="participants-list">`)
		for _, p := range participants {
			ctrl := Element{
				Tag:   "button",
				Class: DeleteControlClass,
				Data:  map[string]string{"activity": a.Name, "email": p},
			}
			card.Controls = append(card.Controls, ctrl)
			fmt.Fprintf(&section,
				`<li><span class="participant-email">%s</span><button class="%s" data-activity="%s" data-email="%s" title="Unregister"%s>🗑️</button></li>`,
				Escape(p), DeleteControlClass, Escape(a.Name), Escape(p), deleteAttrs(o, a.Name, p))
		}
		section.WriteString(`</ul>`)
	} else {
		fmt.Fprintf(&section, `<p class="no-participants">%s</p>`, NoParticipantsText)
	}
	section.WriteString(`</div>`)

	card.HTML = fmt.Sprintf(
		`<div class="%s"><h4>%s</h4><p>%s</p><p><strong>Schedule:</strong> %s</p><p><strong>Availability:</strong> %d spots left</p>%s</div>`,
		CardClass, Escape(a.Name), Escape(a.Description), Escape(a.Schedule), card.SpotsLeft, section.String())
	return card
}

func deleteAttrs(o options, activity, email string) string {
	if o.deleteAction == "" {
		return ""
	}
	target := o.deleteAction + "?activity=" + activityclient.EncodeComponent(activity) +
		"&email=" + activityclient.EncodeComponent(email)
	return fmt.Sprintf(` type="submit" formmethod="post" formaction="%s"`, Escape(target))
}
