package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"slide-quiz/internal/app"
	"slide-quiz/internal/domain"
)

// TopicLister is implemented by loaders that can enumerate their topics.
type TopicLister interface {
	Topics(ctx context.Context) ([]string, error)
}

// CacheInvalidator drops a cached question set.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, topic string) error
}

type topicsResponse struct {
	Topics []string `json:"topics"`
}

type runsResponse struct {
	Active int `json:"active"`
}

// TopicsHandler lists the topics a loader can serve.
func TopicsHandler(lister TopicLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := lister.Topics(r.Context())
		if err != nil {
			log.Printf("list topics: %v", err)
			http.Error(w, "failed to list topics", http.StatusInternalServerError)
			return
		}
		if topics == nil {
			topics = []string{}
		}
		writeJSON(w, http.StatusOK, topicsResponse{Topics: topics})
	}
}

// RunsHandler reports the number of live runs, or the state of one run when
// an id query parameter is given.
func RunsHandler(runs app.RunRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			writeJSON(w, http.StatusOK, runsResponse{Active: runs.Count()})
			return
		}
		engine, ok := runs.Get(id)
		if !ok {
			http.Error(w, domain.ErrRunNotFound.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, engine.State())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// CacheHandler drops the cached set named by the topic query parameter so the
// next run reloads it from the source. Only DELETE is accepted.
func CacheHandler(cache CacheInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			w.Header().Set("Allow", http.MethodDelete)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		topic := r.URL.Query().Get("topic")
		if topic == "" {
			http.Error(w, "missing topic", http.StatusBadRequest)
			return
		}
		if err := cache.Invalidate(r.Context(), topic); err != nil {
			log.Printf("invalidate %s: %v", topic, err)
			http.Error(w, "failed to invalidate cache", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
