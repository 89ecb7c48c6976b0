package mid

import (
	"context"
	"fmt"
	"net/http"

	v1 "github.com/ardanlabs/naivecoin/business/web/v1"
	"github.com/ardanlabs/naivecoin/foundation/web"
)

// MaxBody rejects requests whose body is larger than limit bytes. A body
// without a declared length is cut off when it reaches the limit.
func MaxBody(limit int64) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if r.ContentLength > limit {
				return v1.NewRequestError(fmt.Errorf("request body of %d bytes is over the limit of %d", r.ContentLength, limit), http.StatusRequestEntityTooLarge)
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
