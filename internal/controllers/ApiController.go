package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"barbuddy/internal/providers"
	"barbuddy/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const defaultTopCount = 10

type ApiController struct {
	logger  providers.Logger
	service services.InteractionServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.InteractionServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

// interactionRequest is the wire shape of a visit or like. Slot is the
// arrival time bucket ("21:00") and is required for likes.
type interactionRequest struct {
	VenueID string `json:"v"`
	Slot    string `json:"s"`
}

type interactionResponse struct {
	Accepted bool `json:"accepted"`
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) decodeInteraction(w http.ResponseWriter, r *http.Request) (*interactionRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload interactionRequest
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}
	return &payload, true
}

func (ac *ApiController) respondAccepted(w http.ResponseWriter, accepted bool) {
	gson, err := json.Marshal(interactionResponse{Accepted: accepted})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) ReceiveVisit(w http.ResponseWriter, r *http.Request) {
	payload, ok := ac.decodeInteraction(w, r)
	if !ok {
		return
	}
	ac.respondAccepted(w, ac.service.RecordVisit(payload.VenueID, payload.Slot))
}

func (ac *ApiController) ReceiveLike(w http.ResponseWriter, r *http.Request) {
	payload, ok := ac.decodeInteraction(w, r)
	if !ok {
		return
	}
	ac.respondAccepted(w, ac.service.RecordLike(payload.VenueID, payload.Slot))
}

func (ac *ApiController) GetVenue(w http.ResponseWriter, r *http.Request) {
	venueID := r.URL.Query().Get("v")
	if venueID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	view := ac.service.GetVenue(venueID)
	if view == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	gson, err := json.Marshal(view)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetTopLiked(w http.ResponseWriter, r *http.Request) {
	n := cast.ToInt(r.URL.Query().Get("n"))
	if n <= 0 {
		n = defaultTopCount
	}
	ac.serveFromCacheOrCompute(w, "top:"+cast.ToString(n), func() (any, error) {
		return ac.service.GetTopLiked(n), nil
	})
}

func (ac *ApiController) GetPopularArrival(w http.ResponseWriter, r *http.Request) {
	venueID := r.URL.Query().Get("v")
	if venueID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.serveFromCacheOrCompute(w, "pop:"+venueID, func() (any, error) {
		return map[string]string{"venue_id": venueID, "popular_arrival": ac.service.GetPopularArrival(venueID)}, nil
	})
}

func (ac *ApiController) GetSummary(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "summary", func() (any, error) {
		return ac.service.GetSummary(), nil
	})
}
