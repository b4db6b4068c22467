package cmd

import (
	"fmt"
	"net/http"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal"
	"github.com/tatipharma/pharmabi/internal/logging"
	"github.com/tatipharma/pharmabi/metrics"
)

// apiClient returns a client for the configured server, authenticated with
// the stored session. Every client of a CLI shares one session store, so a
// 401 seen by one of them logs out all of them.
func (c *CLI) apiClient() *api.Client {
	store := c.store
	return &api.Client{
		Name:        "cli",
		Version:     internal.FullVersion(),
		URL:         c.Config.Server,
		Credentials: store,
		HTTP: http.Client{
			Timeout:   c.Config.Timeout,
			Transport: metrics.InstrumentTransport(nil),
		},
		OnUnauthorized: func() {
			logging.Debugf("server rejected the session, logging out")
			if err := store.Clear(); err != nil {
				logging.Warnf("%v", err)
			}
		},
		ExportQuirkFixedPaging: c.Config.ExportFixedPaging,
	}
}

// mustBeLoggedIn returns an error when there is no usable session. An
// expired session is cleared.
func (c *CLI) mustBeLoggedIn() error {
	store := c.store
	sess, err := store.Load()
	if err != nil {
		return userError(err)
	}
	if sess.Expired(c.Clock.Now()) {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clear expired session: %w", err)
		}
		return Error{Suggestion: ErrSessionExpired.Error()}
	}
	return nil
}
