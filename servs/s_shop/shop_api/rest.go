package shop_api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/pkg/x_log"
	"github.com/zggff/shopbot/recover"
)

// Router builds the HTTP surface: the webhook, the node browser, health
// and the websocket chat.
func Router(shop IShop, hub *Hub) http.Handler {
	log := x_log.New("shop_api")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, took time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("took", took).
			Msg("http request")
	}))
	r.Use(recover.HTTP(ServiceName))

	r.Route("/api", func(r chi.Router) {
		r.Post("/updates", handleUpdate(shop))
		r.Get("/nodes", handleNode(shop))
		r.Get("/health", handleHealth(shop))
	})

	if hub != nil {
		r.Get("/ws", hub.HandleWS(shop))
	}
	return r
}

func handleUpdate(shop IShop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u bot.Update
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		reply, ok := shop.Handle(r.Context(), u)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, r, http.StatusOK, reply)
	}
}

func handleNode(shop IShop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := shop.Node(r.URL.Query().Get("address"))
		if err != nil {
			writeError(w, r, StatusOf(err), err.Error())
			return
		}
		writeJSON(w, r, http.StatusOK, view)
	}
}

func handleHealth(shop IShop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := shop.Health()
		status := http.StatusOK
		if h.Status == StatusUnavailable {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, r, status, h)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	hlog.FromRequest(r).Debug().Int("status", status).Str("error", msg).Msg("request failed")
	writeJSON(w, r, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("failed to write response")
	}
}
