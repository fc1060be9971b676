package page

import (
	"context"
	"errors"

	"github.com/nomis52/clubsignup/clients/activityclient"
)

const (
	// SignupRejectedText is shown when a rejection carries no detail.
	SignupRejectedText = "An error occurred"
	// SignupFailedText is shown when the request itself failed.
	SignupFailedText = "Failed to sign up. Please try again."
)

// Submit signs the form's email up for the selected activity.
//
// On success the server's message is shown with ClassSuccess, the form is
// reset and the list is fetched again. A rejection shows the server's detail
// with ClassError. A transport failure or unreadable response shows
// SignupFailedText. The message is hidden after MessageDisplayDuration.
//
// Submit returns the signup error only; a failed re-fetch is reflected in the
// list and logged.
func (p *Page) Submit(ctx context.Context) error {
	p.mu.Lock()
	form := p.form
	p.mu.Unlock()

	if form.Email == "" || form.Activity == "" {
		return ErrIncompleteForm
	}

	result, err := p.backend.Signup(ctx, form.Activity, form.Email)
	p.metrics.observe(operationSignup, err)

	var apiErr *activityclient.APIError
	switch {
	case err == nil:
		p.signupLog.Info("signed up", "activity", form.Activity, "email", form.Email)
		p.showMessage(result.Message, ClassSuccess)
		p.resetForm()
		_ = p.FetchActivities(ctx)
		return nil
	case errors.As(err, &apiErr):
		text := apiErr.Detail
		if text == "" {
			text = SignupRejectedText
		}
		p.signupLog.Warn("signup rejected", "activity", form.Activity, "email", form.Email, "status", apiErr.StatusCode, "detail", apiErr.Detail)
		p.showMessage(text, ClassError)
		return err
	default:
		p.signupLog.Error("error signing up", "activity", form.Activity, "email", form.Email, "error", err)
		p.showMessage(SignupFailedText, ClassError)
		return err
	}
}
