package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project. Write
// timeout leaves room for a synchronous verify run to finish.
func New(addr string, handler http.Handler, verifyTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      verifyTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
