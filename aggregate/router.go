package aggregate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Router returns the HTTP surface for external collaborators. Thin by
// intent: query parameters in, the merged record (or brief) out.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/restaurant", s.handleRestaurant)
	r.Get("/dish-image", s.handleDishImage)
	r.Get("/brief", s.handleBrief)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// requestID tags every request with a UUID so log lines from one
// aggregation can be tied together across providers.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleRestaurant(w http.ResponseWriter, r *http.Request) {
	name, address, ok := restaurantParams(w, r)
	if !ok {
		return
	}
	data, err := s.CollectRestaurantData(r.Context(), name, address)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		s.logger.Error("collect failed", "restaurant", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Service) handleDishImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	restaurant := q.Get("restaurant")
	dish := q.Get("dish")
	if restaurant == "" || dish == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant and dish are required"})
		return
	}
	img := s.SearchDishImage(r.Context(), restaurant, dish, q.Get("location"))
	writeJSON(w, http.StatusOK, img)
}

func (s *Service) handleBrief(w http.ResponseWriter, r *http.Request) {
	name, address, ok := restaurantParams(w, r)
	if !ok {
		return
	}
	data, err := s.CollectRestaurantData(r.Context(), name, address)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		s.logger.Error("collect failed", "restaurant", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(FormatForAnalysis(data)))
}

func restaurantParams(w http.ResponseWriter, r *http.Request) (name, address string, ok bool) {
	q := r.URL.Query()
	name, address = q.Get("name"), q.Get("address")
	if name == "" || address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and address are required"})
		return "", "", false
	}
	return name, address, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
