package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// callbackPage is shown in the browser after the redirect lands.
const callbackPage = `<!DOCTYPE html>
<html><head><title>lineargate</title></head>
<body style="font-family: sans-serif; margin: 4em;">
<h2>%s</h2>
<p>You can close this window and return to your terminal.</p>
</body></html>`

// WaitForCallback runs a localhost HTTP server on addr until the OAuth
// redirect arrives, then verifies the state parameter and returns the
// authorization code. The server shuts down after the first redirect or
// when ctx is cancelled.
func (f *Flow) WaitForCallback(ctx context.Context, addr string) (string, error) {
	type outcome struct {
		code string
		err  error
	}
	results := make(chan outcome, 1)

	r := chi.NewRouter()
	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		if errParam := q.Get("error"); errParam != "" {
			http.Error(w, fmt.Sprintf(callbackPage, "Authorization was denied."), http.StatusOK)
			results <- outcome{err: fmt.Errorf("oauth: authorization denied: %s", errParam)}
			return
		}

		if err := f.VerifyState(q.Get("state")); err != nil {
			http.Error(w, fmt.Sprintf(callbackPage, "Invalid state parameter."), http.StatusBadRequest)
			results <- outcome{err: err}
			return
		}

		code := q.Get("code")
		if code == "" {
			http.Error(w, fmt.Sprintf(callbackPage, "Missing authorization code."), http.StatusBadRequest)
			results <- outcome{err: errors.New("oauth: redirect carried no code")}
			return
		}

		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprintf(w, callbackPage, "Authentication complete.")
		results <- outcome{code: code}
	})

	srv := &http.Server{Addr: addr, Handler: r}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case res := <-results:
		return res.code, res.err
	case err := <-serveErr:
		return "", fmt.Errorf("oauth: callback server: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
