package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/promptwars/internal/apperr"
)

const maxBodyBytes = 64 << 10

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Code      apperr.Kind `json:"code"`
		Message   string      `json:"message"`
		Retryable bool        `json:"retryable,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, kind apperr.Kind, msg string) {
	var body errorBody
	body.Error.Code = kind
	body.Error.Message = msg
	body.Error.Retryable = kind == apperr.KindConflict
	writeJSON(w, status, body)
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidState, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindProvider:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError renders err. Internal errors are logged and never echoed to the client.
func writeError(w http.ResponseWriter, logger logrus.FieldLogger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.WithError(err).Error("request failed")
		writeMessage(w, http.StatusInternalServerError, kind, "internal server error")
		return
	}
	var ae *apperr.Error
	msg := err.Error()
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	writeMessage(w, statusFor(kind), kind, msg)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apperr.Validation(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

func pathGameID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid game id")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Validation(fmt.Sprintf("%s must be an integer", key))
	}
	return v, nil
}
