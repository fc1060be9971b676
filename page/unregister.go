package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/nomis52/clubsignup/clients/activityclient"
	"github.com/nomis52/clubsignup/render"
)

const (
	// UnregisterRejectedText is alerted when a rejection carries no text.
	UnregisterRejectedText = "Failed to unregister participant"
	// UnregisterFailedText is alerted when the request itself failed.
	UnregisterFailedText = "Error unregistering participant"
)

// ClickEvent is a click inside a rendered card. Path runs from the clicked
// element outward to the card, as an event bubbles.
type ClickEvent struct {
	Card string
	Path []render.Element
}

type clickListener func(ctx context.Context, path []render.Element) error

// Click delivers ev to its card's listener. A click that is not on (or
// inside) a delete control is ignored. ErrNotRendered is returned when the
// card is not part of the current list.
func (p *Page) Click(ctx context.Context, ev ClickEvent) error {
	p.mu.Lock()
	listener, ok := p.listeners[ev.Card]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotRendered, ev.Card)
	}
	return listener(ctx, ev.Path)
}

// ClickDelete clicks the delete control of email on activity's card.
func (p *Page) ClickDelete(ctx context.Context, activity, email string) error {
	p.mu.Lock()
	var (
		card  render.Card
		found bool
	)
	for _, c := range p.cards {
		if c.Name == activity {
			card, found = c, true
			break
		}
	}
	p.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %q", ErrNotRendered, activity)
	}

	ctrl, ok := card.Control(email)
	if !ok {
		return fmt.Errorf("%w: no control for %q on %q", ErrNotRendered, email, activity)
	}
	return p.Click(ctx, ClickEvent{Card: card.Name, Path: card.ClickPath(ctrl)})
}

// deleteListener handles clicks delegated from one card.
func (p *Page) deleteListener() clickListener {
	return func(ctx context.Context, path []render.Element) error {
		btn, ok := render.Closest(path, render.DeleteControlClass)
		if !ok {
			return nil
		}
		activity := btn.Data["activity"]
		email := btn.Data["email"]

		if !p.dialog.Confirm(fmt.Sprintf("Unregister %s from %s?", email, activity)) {
			return nil
		}
		return p.unregister(ctx, activity, email)
	}
}

func (p *Page) unregister(ctx context.Context, activity, email string) error {
	_, err := p.backend.Unregister(ctx, activity, email)
	p.metrics.observe(operationUnregister, err)

	var apiErr *activityclient.APIError
	switch {
	case err == nil:
		p.unregisterLog.Info("unregistered", "activity", activity, "email", email)
		_ = p.FetchActivities(ctx)
		return nil
	case errors.As(err, &apiErr):
		text := apiErr.Detail
		if text == "" {
			text = apiErr.Message
		}
		if text == "" {
			text = UnregisterRejectedText
		}
		p.unregisterLog.Error("unregister failed", "activity", activity, "email", email,
			"status", apiErr.StatusCode, "detail", apiErr.Detail, "message", apiErr.Message)
		p.dialog.Alert(text)
		return err
	default:
		p.unregisterLog.Error("error unregistering participant", "activity", activity, "email", email, "error", err)
		p.dialog.Alert(UnregisterFailedText)
		return err
	}
}
