package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fundlock/escrowd/internal/httputil"
)

type valueKey struct{}

// ValueMiddleware enforces the value-attachment discipline: a request may
// carry value (the X-Attached-Value header, in smallest units) only on routes
// declared payable. Value sent anywhere else is an unsolicited direct
// transfer and is rejected unconditionally.
func ValueMiddleware(payableRoutes ...string) mux.MiddlewareFunc {
	payable := make(map[string]bool)
	for _, route := range payableRoutes {
		payable[route] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-Attached-Value")
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			value, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				httputil.WriteErrorResponse(w, r, http.StatusBadRequest,
					"INVALID_AMOUNT", "malformed value attachment", nil)
				return
			}

			if value > 0 {
				template := ""
				if route := mux.CurrentRoute(r); route != nil {
					if t, err := route.GetPathTemplate(); err == nil {
						template = t
					}
				}
				if !payable[template] {
					httputil.WriteErrorResponse(w, r, http.StatusBadRequest,
						"OPERATION_NOT_SUPPORTED", "direct value transfers are not accepted", nil)
					return
				}
			}

			ctx := context.WithValue(r.Context(), valueKey{}, value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AttachedValue returns the value attached to the request, or zero.
func AttachedValue(r *http.Request) int64 {
	if v, ok := r.Context().Value(valueKey{}).(int64); ok {
		return v
	}
	return 0
}
