package guide

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/saltaire-guide/site/content"
	"github.com/saltaire-guide/site/formbridge"
	"github.com/saltaire-guide/site/views"
)

// handleFormSubmit accepts a public form post. The order is fixed: rate
// limit, honeypot, validation, store, forward.
func (a *App) handleFormSubmit(c echo.Context) error {
	name := c.Param("form")
	f, ok := formbridge.Lookup(name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	site, err := a.Cache.Site()
	if err != nil {
		return err
	}
	page, ok := site.FormPage(name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	ip := c.RealIP()
	if !a.formLimiter.Allow(ip) {
		return c.String(http.StatusTooManyRequests, "Too many submissions. Try again in a minute.")
	}
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed form body")
	}
	if strings.TrimSpace(params.Get(formbridge.HoneypotField)) != "" {
		c.Logger().Infof("form %s: dropped honeypot submission from %s", name, ip)
		return c.Redirect(http.StatusSeeOther, sentURL(page))
	}

	values, fieldErrs := f.Validate(params)
	if fieldErrs != nil {
		return RenderStatus(c, http.StatusUnprocessableEntity, a.pageComponent(site, page, views.FormState{
			CSRF:   CsrfToken(c),
			Values: values,
			Errors: fieldErrs,
			Failed: true,
		}))
	}

	ctx := c.Request().Context()
	sub := Submission{
		ID:       uuid.NewString(),
		Form:     name,
		Fields:   values,
		Status:   StatusPending,
		RemoteIP: ip,
	}
	if err := a.Store.SaveSubmission(ctx, sub); err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	c.Logger().Infof("form %s: stored submission %s", name, sub.ID)
	if a.Forms.Enabled() {
		// A failed forward is retried later; the visitor still sees success.
		_ = a.Forward(ctx, sub)
	}
	return c.Redirect(http.StatusSeeOther, sentURL(page))
}

func sentURL(p *content.Page) string {
	return content.Href(p.Path) + "?sent=1#form"
}

// ErrInFlight is returned by Forward when another caller is already
// forwarding the submission, or it has been forwarded.
var ErrInFlight = errors.New("guide: submission is already being forwarded")

// staleClaim is when a sending claim is assumed abandoned.
func (a *App) staleClaim() time.Time {
	return time.Now().Add(-2 * a.Config.ForwardTimeout)
}

// Forward claims one stored submission, sends it and records the outcome.
// Without an endpoint it returns formbridge.ErrDisabled and leaves the
// submission untouched.
func (a *App) Forward(ctx context.Context, sub Submission) error {
	if !a.Forms.Enabled() {
		return formbridge.ErrDisabled
	}
	claimed, err := a.Store.Claim(ctx, sub.ID, a.staleClaim())
	if err != nil {
		return err
	}
	if !claimed {
		return ErrInFlight
	}
	fctx, cancel := context.WithTimeout(ctx, a.Config.ForwardTimeout)
	defer cancel()
	err = a.Forms.Forward(fctx, sub.Form, sub.ID, sub.Fields)
	// Record the outcome even if the request context is gone.
	rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer rcancel()
	if err != nil {
		a.Logger().Warnf("forward %s (%s): %v", sub.ID, sub.Form, err)
		if mErr := a.Store.MarkFailed(rctx, sub.ID, err); mErr != nil {
			return fmt.Errorf("mark %s failed: %w", sub.ID, mErr)
		}
		return err
	}
	if err := a.Store.MarkForwarded(rctx, sub.ID); err != nil {
		return fmt.Errorf("mark %s forwarded: %w", sub.ID, err)
	}
	return nil
}

// RetryPending forwards every pending or failed submission that still has
// attempts left. It returns how many were forwarded.
func (a *App) RetryPending(ctx context.Context) (int, error) {
	if !a.Forms.Enabled() {
		return 0, formbridge.ErrDisabled
	}
	subs, err := a.Store.ListRetryable(ctx, a.Config.MaxAttempts, a.staleClaim())
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, sub := range subs {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := a.Forward(ctx, sub); err == nil {
			sent++
		}
	}
	return sent, nil
}

// StartRetryScheduler retries pending submissions every interval until the
// returned stop function is called.
func (a *App) StartRetryScheduler(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := a.RetryPending(ctx)
				if err != nil {
					a.Logger().Errorf("retry pending submissions: %v", err)
				} else if n > 0 {
					a.Logger().Infof("forwarded %d pending submissions", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			close(done)
		})
	}
}
