package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"brokeaf/backend/storage"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// handleStoreError maps store failures onto HTTP responses per the
// error taxonomy: permission-denied carries operator guidance,
// missing records are 404, everything else is a generic retryable
// failure.
func handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrPermissionDenied):
		http.Error(w, "Database permission denied. "+storage.PermissionGuidance, http.StatusForbidden)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		log.Printf("Store error: %v", err)
		http.Error(w, "operation failed, please try again", http.StatusInternalServerError)
	}
}

// streamEvents writes server-sent events from payloads until the
// client disconnects. A slow client may skip intermediate snapshots
// but always receives the most recent one.
func streamEvents(w http.ResponseWriter, r *http.Request, payloads <-chan []byte) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-payloads:
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// offerPayload queues a snapshot for a streaming client without
// blocking the store's notification path. When the client is too slow
// to drain the channel, the oldest queued snapshot is dropped so the
// newest one always gets through.
func offerPayload(payloads chan []byte, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error encoding stream payload: %v", err)
		return
	}
	for {
		select {
		case payloads <- data:
			return
		default:
		}
		select {
		case <-payloads:
		default:
		}
	}
}
