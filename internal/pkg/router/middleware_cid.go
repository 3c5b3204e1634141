package router

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/shandysiswandi/goinstant/internal/pkg/instrument"
	"github.com/shandysiswandi/goinstant/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is echoed on every response and stamped on every
	// log line as _cID.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is read when a proxy set it and X-Correlation-ID is absent.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

var correlationHeaders = [...]string{HeaderCorrelationID, HeaderRequestID}

// inboundCID returns the first usable caller-supplied id. Values holding
// control characters are skipped since they would end up in log output.
func inboundCID(h http.Header) string {
	for _, name := range correlationHeaders {
		v := strings.TrimSpace(h.Get(name))
		if v == "" || strings.IndexFunc(v, unicode.IsControl) >= 0 {
			continue
		}
		return v[:min(len(v), maxCorrelationIDLen)]
	}
	return ""
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := inboundCID(r.Header)
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}
			if cid == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(HeaderCorrelationID, cid)
			next.ServeHTTP(w, r.WithContext(instrument.SetCorrelationID(r.Context(), cid)))
		})
	}
}
