package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"model-gateway/internal/chat"
	apierrors "model-gateway/internal/errors"
	"model-gateway/internal/models"
)

type chatPayload struct {
	ModelID     string          `json:"modelId"`
	Messages    json.RawMessage `json:"messages"`
	Temperature *float64        `json:"temperature"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Service) HandleChat(w http.ResponseWriter, r *http.Request) {
	requestID := RequestIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.Write(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		apierrors.Write(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	req, apiErr := s.decodeChatRequest(body)
	if apiErr != nil {
		apierrors.WriteError(w, apiErr)
		return
	}

	start := time.Now()
	reply, err := s.Handle(r.Context(), req)
	if err != nil {
		apiErr := apierrors.From(err)
		s.logger.Warn(
			"chat request failed",
			"kind", apiErr.Kind,
			"model", req.ModelID,
			"provider", apiErr.Provider,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		)
		apierrors.WriteError(w, apiErr)
		return
	}

	s.logger.Debug("chat request served", "model", req.ModelID, "duration_ms", time.Since(start).Milliseconds(), "request_id", requestID)
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// decodeChatRequest leaves Messages nil unless the body carried a JSON array,
// which Handle then reports as a validation error.
func (s *Service) decodeChatRequest(body []byte) (chat.Request, *apierrors.Error) {
	var payload chatPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return chat.Request{}, apierrors.Validation("invalid JSON payload", err)
	}

	req := chat.Request{
		ModelID:     payload.ModelID,
		Temperature: s.temperature,
	}
	if payload.Temperature != nil {
		req.Temperature = *payload.Temperature
	}

	raw := bytes.TrimSpace(payload.Messages)
	if len(raw) > 0 && raw[0] == '[' {
		var messages []chat.Message
		if err := json.Unmarshal(raw, &messages); err != nil {
			return chat.Request{}, apierrors.Validation("messages must be an array of {role, content} objects", err)
		}
		if messages == nil {
			messages = []chat.Message{}
		}
		req.Messages = messages
	}
	return req, nil
}

func (s *Service) HandleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.BuildListResponse(s.registry))
}

func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) HandleUnsupported(w http.ResponseWriter, r *http.Request) {
	apierrors.Write(w, http.StatusNotFound, "path is not supported by this gateway")
}

func (s *Service) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierrors.Write(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
