package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"festquiz/internal/app"
	"festquiz/internal/domain"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 1000
)

// NewRouter exposes the spectator websocket and, when an archive is given, the facit history.
func NewRouter(hub *Hub, archive app.FacitArchive) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", hub.ServeWS)

	if archive != nil {
		h := &facitHandler{archive: archive}
		r.HandleFunc("/facits", h.list).Methods(http.MethodGet)
		r.HandleFunc("/facits/{id}", h.get).Methods(http.MethodGet)
	}
	return r
}

type facitHandler struct {
	archive app.FacitArchive
}

func (h *facitHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxRecentLimit)
	}
	facits, err := h.archive.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list facits failed")
		writeError(w, http.StatusInternalServerError, "could not list facits")
		return
	}
	writeJSON(w, http.StatusOK, facits)
}

func (h *facitHandler) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	facit, err := h.archive.Get(r.Context(), id)
	if errors.Is(err, domain.ErrFacitNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Str("facit_id", id).Msg("get facit failed")
		writeError(w, http.StatusInternalServerError, "could not load facit")
		return
	}
	writeJSON(w, http.StatusOK, facit)
}

type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}
