package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/timex"
)

// authBodyLimit bounds register and login bodies.
const authBodyLimit = 16 << 10

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), op, "request_id", GetRequestID(r.Context()), "error", err)
	} else {
		s.logger.Debug(r.Context(), op, "request_id", GetRequestID(r.Context()), "status", status, "error", err)
	}
	respondError(w, status, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body: %w", common.ErrValidation, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON body", common.ErrValidation)
	}
	return nil
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeJSON(w, r, authBodyLimit, &req); err != nil {
		s.fail(w, r, "register", err)
		return
	}

	resp, err := s.users.Register(r.Context(), req)
	if err != nil {
		s.fail(w, r, "register", err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", resp.User.Username)
	respondJSON(w, http.StatusCreated, resp)
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(w, r, authBodyLimit, &req); err != nil {
		s.fail(w, r, "login", err)
		return
	}
	if req.Username == "" || req.Password == "" {
		s.fail(w, r, "login", fmt.Errorf("%w: username and password are required", common.ErrValidation))
		return
	}

	resp, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, "login", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) lastUpdate(w http.ResponseWriter, r *http.Request) {
	ts, err := s.snapshots.LastUpdate(r.Context())
	if err != nil {
		s.fail(w, r, "last update", err)
		return
	}
	respondJSON(w, http.StatusOK, api.LastUpdateResponse{LastUpdate: timex.FormatTimestamp(ts)})
}

func (s *HTTPServer) download(w http.ResponseWriter, r *http.Request) {
	blob, ts, err := s.snapshots.Download(r.Context())
	if err != nil {
		s.fail(w, r, "download", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", fmt.Sprint(len(blob)))
	w.Header().Set("Last-Modified", ts.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (s *HTTPServer) upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		s.fail(w, r, "upload", common.ErrUnauthorized)
		return
	}

	var req api.UploadRequest
	if err := decodeJSON(w, r, s.uploadBodyLimit(), &req); err != nil {
		s.fail(w, r, "upload", err)
		return
	}
	if req.Database == "" {
		s.fail(w, r, "upload", fmt.Errorf("%w: database is required", common.ErrValidation))
		return
	}
	blob, err := base64.StdEncoding.DecodeString(req.Database)
	if err != nil {
		s.fail(w, r, "upload", fmt.Errorf("%w: database is not base64: %w", common.ErrValidation, err))
		return
	}

	ts, err := s.snapshots.Upload(r.Context(), userID, blob)
	if err != nil {
		s.fail(w, r, "upload", err)
		return
	}
	respondJSON(w, http.StatusOK, api.LastUpdateResponse{LastUpdate: timex.FormatTimestamp(ts)})
}

// uploadBodyLimit allows for the base64 expansion of MaxUploadBytes plus
// the JSON envelope.
func (s *HTTPServer) uploadBodyLimit() int64 {
	if s.opts.MaxUploadBytes <= 0 {
		return 1 << 30
	}
	return s.opts.MaxUploadBytes/3*4 + 8 + 1024
}
