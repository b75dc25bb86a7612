// Package api exposes a constructed atlaslib.Engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/takeshi-0987/ipatlas/atlaslib"
)

const requestTimeout = 60 * time.Second

// Opts tune the HTTP surface. Empty basic-auth credentials disable
// authentication.
type Opts struct {
	BasicAuthUser     string
	BasicAuthPassword string
}

// MakeServer builds the router over an engine.
func MakeServer(engine *atlaslib.Engine, opts Opts) *chi.Mux {
	h := handler{engine: engine}
	router := chi.NewRouter()

	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)
	router.Use(middleware.SetHeader("Content-Type", "application/json"))

	if opts.BasicAuthUser != "" || opts.BasicAuthPassword != "" {
		router.Use(basicAuth(opts.BasicAuthUser, opts.BasicAuthPassword))
	}

	router.Get("/info", h.handleInfo)
	router.Get("/ip/{ip}", h.handleDetails)
	router.Get("/location/{ip}", h.handleLocation)
	router.Post("/resolve", h.handleResolve)
	router.Delete("/cache", h.handleClearCache)

	return router
}

type handler struct {
	engine *atlaslib.Engine
}

func (h handler) handleInfo(w http.ResponseWriter, req *http.Request) {
	statuses, err := h.engine.ListSources()
	if err != nil {
		sendError(w, err, "Cannot collect engine info", http.StatusServiceUnavailable)

		return
	}

	stats, err := h.engine.Stats()
	if err != nil {
		sendError(w, err, "Cannot collect engine info", http.StatusServiceUnavailable)

		return
	}

	encodeJSON(w, infoResponseStruct{
		Sources: statuses,
		Stats:   stats,
	})
}

func (h handler) handleDetails(w http.ResponseWriter, req *http.Request) {
	ip := chi.URLParam(req, "ip")

	details, err := h.engine.Details(req.Context(), ip)
	if err != nil {
		sendError(w, err, "Cannot resolve IP address", http.StatusServiceUnavailable)

		return
	}

	encodeJSON(w, detailsResponseStruct{Result: details})
}

func (h handler) handleLocation(w http.ResponseWriter, req *http.Request) {
	ip := chi.URLParam(req, "ip")

	location, err := h.engine.FormatLocation(req.Context(), ip)
	if err != nil {
		sendError(w, err, "Cannot resolve IP address", http.StatusServiceUnavailable)

		return
	}

	encodeJSON(w, locationResponseStruct{IP: ip, Location: location})
}

func (h handler) handleResolve(w http.ResponseWriter, req *http.Request) {
	request := resolveRequestStruct{}

	if err := decodeJSON(req, &request); err != nil {
		sendError(w, err, "Cannot parse request body", http.StatusBadRequest)

		return
	}

	if len(request.IPs) == 0 {
		sendError(w, nil, "At least one ip address is required", http.StatusBadRequest)

		return
	}

	response := resolveResponseStruct{
		Results: make(map[string][]atlaslib.QueryResult, len(request.IPs)),
	}

	for _, ip := range request.IPs {
		results, err := h.engine.Resolve(req.Context(), ip)
		if err != nil {
			sendError(w, err, "Cannot resolve IP address", http.StatusServiceUnavailable)

			return
		}

		response.Results[ip] = results
	}

	encodeJSON(w, response)
}

func (h handler) handleClearCache(w http.ResponseWriter, req *http.Request) {
	if err := h.engine.ClearCache(); err != nil {
		sendError(w, err, "Cannot clear cache", http.StatusServiceUnavailable)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
