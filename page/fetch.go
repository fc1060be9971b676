package page

import (
	"context"

	"github.com/nomis52/clubsignup/render"
)

// FetchActivities requests the activity collection and replaces the list and
// the select options with a fresh render. On failure the list shows
// render.LoadFailedHTML, the select keeps its options and the error is logged.
//
// There are no retries and no timeout beyond ctx. Overlapping fetches may
// finish in any order; the last one to finish wins.
func (p *Page) FetchActivities(ctx context.Context) error {
	activities, err := p.backend.ListActivities(ctx)
	if err != nil {
		p.fetchLog.Error("error fetching activities", "error", err)
		p.metrics.observe(operationList, err)

		p.mu.Lock()
		p.listHTML = render.LoadFailedHTML
		p.cards = nil
		p.listeners = map[string]clickListener{}
		p.mu.Unlock()
		return err
	}

	view := render.Render(activities, p.renderOpts...)
	p.fetchLog.Debug("activities loaded", "count", len(view.Cards))
	p.metrics.observe(operationList, nil)
	p.metrics.recordView(view)

	listeners := make(map[string]clickListener, len(view.Cards))
	for _, card := range view.Cards {
		listeners[card.Name] = p.deleteListener()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.listHTML = view.ListHTML()
	p.cards = view.Cards
	p.listeners = listeners
	p.options = view.Options
	p.form.Activity = render.Placeholder.Value
	return nil
}
