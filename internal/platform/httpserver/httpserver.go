package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Save requests carry whole family payloads, so
// the write window is wider than the read one; idle keep-alives are capped
// so advisor browsers do not pin connections across long sessions.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
