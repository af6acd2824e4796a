package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manusawe00z/go-bot/pkg/publish"
)

const maxRequestBytes = 64 << 10

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type SpeechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Name     string `json:"name,omitempty"`
}

type SpeechResponse struct {
	RequestID string `json:"request_id"`
	Path      string `json:"path"`
	Bytes     int    `json:"bytes"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   s.version,
	})
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	name, err := outputName(req.Name)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	lang := req.Language
	if lang == "" {
		lang = s.language
	}

	res, err := s.pub.Publish(r.Context(), publish.Request{
		Text:        req.Text,
		Language:    lang,
		Destination: filepath.Join(s.cfg.OutputDir, name),
	})
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SpeechResponse{
		RequestID: res.RequestID,
		Path:      res.Path,
		Bytes:     res.Bytes,
	})
}

// outputName turns the client supplied name into a file name inside the
// output directory. Empty names get a random one.
func outputName(name string) (string, error) {
	if name == "" {
		return uuid.NewString() + ".mp3", nil
	}
	if !validName.MatchString(name) || strings.Contains(name, "..") {
		return "", errors.New("name must be a plain file name of letters, digits, '.', '_' or '-'")
	}
	if !strings.EqualFold(filepath.Ext(name), ".mp3") {
		name += ".mp3"
	}
	return name, nil
}

func statusFor(err error) int {
	switch {
	case publish.IsKind(err, publish.KindUsage):
		return http.StatusBadRequest
	case publish.IsKind(err, publish.KindSynthesis):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
