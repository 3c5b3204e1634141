package router

import (
	"net/http"

	"github.com/shandysiswandi/goinstant/internal/pkg/clock"
)

// HeaderServerInstant carries the nanosecond instant at which the server
// started handling the request.
const HeaderServerInstant = "X-Server-Instant"

func middlewareServerInstant(clk clock.Clocker) Middleware {
	return func(next http.Handler) http.Handler {
		if clk == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderServerInstant, clk.Instant().String())
			next.ServeHTTP(w, r)
		})
	}
}
