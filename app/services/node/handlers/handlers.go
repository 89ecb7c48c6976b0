// Package handlers manages the different versions of the API.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/ardanlabs/naivecoin/app/services/node/handlers/debug/checkgrp"
	v1 "github.com/ardanlabs/naivecoin/app/services/node/handlers/v1"
	"github.com/ardanlabs/naivecoin/business/web/v1/mid"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/state"
	"github.com/ardanlabs/naivecoin/foundation/events"
	"github.com/ardanlabs/naivecoin/foundation/nameservice"
	"github.com/ardanlabs/naivecoin/foundation/web"
	"go.uber.org/zap"
)

// Request bodies above these sizes are rejected when the configuration
// doesn't set a limit. Wallets submit single transactions, peers propose
// whole blocks.
const (
	defaultPublicMaxBody  = 1 << 20
	defaultPrivateMaxBody = 8 << 20
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown     chan os.Signal
	Log          *zap.SugaredLogger
	State        *state.State
	NS           *nameservice.NameService
	Evts         *events.Events
	CORSOrigin   string
	MaxBodyBytes int64
}

// PublicMux constructs the http.Handler wallets and explorers talk to. It
// answers CORS preflight requests for browser wallets.
func PublicMux(cfg MuxConfig) http.Handler {
	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultPublicMaxBody
	}

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.MaxBody(maxBody),
		mid.Cors(origin),
		mid.Panics(),
	)

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
	app.Handle(http.MethodOptions, "", "/*", h)

	// Load the v1 routes.
	v1.PublicRoutes(app, v1.Config{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	})

	return app
}

// PrivateMux constructs the http.Handler peers talk to. Peers are other
// nodes, there is no CORS support.
func PrivateMux(cfg MuxConfig) http.Handler {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultPrivateMaxBody
	}

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.MaxBody(maxBody),
		mid.Panics(),
	)

	// Load the v1 routes.
	v1.PrivateRoutes(app, v1.Config{
		Log:   cfg.Log,
		State: cfg.State,
	})

	return app
}

// DebugStandardLibraryMux registers all the debug routes from the standard library
// into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service. This bypassing the use of the
// DefaultServerMux. Using the DefaultServerMux would be a security risk since
// a dependency could inject a handler into our service without us knowing it.
func DebugMux(build string, log *zap.SugaredLogger, st *state.State) http.Handler {
	mux := DebugStandardLibraryMux()

	// Register debug check endpoints.
	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
		State: st,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
