package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/models"
	"github.com/stockpredictorai/prediction-backend/internal/response"
	"github.com/stockpredictorai/prediction-backend/internal/window"
)

type windowHandlers struct {
	ResponseHandler response.ResponseHandler
	Now             func() time.Time
}

func NewWindowHandlers(deps *Deps) *windowHandlers {
	return &windowHandlers{
		ResponseHandler: deps.ResponseHandler,
		Now:             time.Now,
	}
}

func (h *windowHandlers) WindowRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{type}", h.Status)
	r.Get("/{type}/stream", h.Stream)
	return r
}

// Status reports whether the submission window for a type is open right
// now, with the countdown message and the deadline a submission made now
// would get. Clients poll this every second while a form is mounted.
func (h *windowHandlers) Status(w http.ResponseWriter, r *http.Request) {
	t := models.PredictionType(chi.URLParam(r, "type"))
	if !t.Valid() {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("unknown prediction type"))
		return
	}
	status := window.Evaluate(t, h.Now())
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, status)
}

// Stream pushes window status as server-sent events, one per second, for
// clients that prefer push over polling. The monitor stops when the client
// disconnects.
func (h *windowHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	t := models.PredictionType(chi.URLParam(r, "type"))
	if !t.Valid() {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("unknown prediction type"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("streaming not supported by this connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	m := window.NewMonitor(t, window.WithClock(h.Now))
	for status := range m.Run(r.Context()) {
		payload, err := json.Marshal(status)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}
