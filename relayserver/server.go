package relayserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gtank/niwl/relay"
	"github.com/gtank/niwl/relaystore"
	"github.com/sirupsen/logrus"
)

// Server answers the relay HTTP protocol against a relaystore.Store.
type Server struct {
	Store relaystore.Store
}

// Routes builds the handler tree: POST /new and POST /tags.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /new", s.handlePost)
	mux.HandleFunc("POST /tags", s.handleFetch)
	return mux
}

// ListenAndServe runs the server on addr until ctx is cancelled, at
// which point it shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	logger := logrus.WithFields(logrus.Fields{
		"function": "ListenAndServe",
		"package":  "relayserver",
		"addr":     addr,
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("relay server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down relay server")
		return srv.Shutdown(context.Background())
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "handlePost",
		"package":  "relayserver",
	})

	var req relay.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithError(err).Warn("malformed post request")
		writeJSON(w, http.StatusBadRequest, relay.PostMessageResponse{Tag: "error"})
		return
	}

	if _, err := s.Store.Post(r.Context(), req.Tag, req.Ciphertext); err != nil {
		logger.WithError(err).Error("store post failed")
		writeJSON(w, http.StatusInternalServerError, relay.PostMessageResponse{Tag: "error"})
		return
	}

	writeJSON(w, http.StatusOK, relay.PostMessageResponse{Tag: req.Tag.String()})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "handleFetch",
		"package":  "relayserver",
	})

	var req relay.FetchMessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithError(err).Warn("malformed fetch request")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	entries, err := s.Store.Fetch(r.Context(), req.ReferenceTag, req.DetectionKey)
	if err != nil {
		logger.WithError(err).Error("store fetch failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	detected := make([]relay.DetectedEntry, len(entries))
	for i, e := range entries {
		detected[i] = relay.DetectedEntry{Tag: e.Tag, Ciphertext: e.Ciphertext}
	}

	writeJSON(w, http.StatusOK, relay.FetchMessagesResponse{DetectedTags: detected})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
