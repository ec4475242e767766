// Package httpapi serves translations, bleep tones and streamed playback over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/audio"
	"github.com/daikw/angertranslator/internal/bleep"
	"github.com/daikw/angertranslator/internal/config"
	"github.com/daikw/angertranslator/internal/observability"
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/playback"
	"github.com/daikw/angertranslator/internal/ratelimit"
	"github.com/daikw/angertranslator/internal/reliability"
	"github.com/daikw/angertranslator/internal/translator"
)

type Server struct {
	cfg        config.Config
	translator *translator.Service
	voice      playback.Voice
	metrics    *observability.Metrics
	upgrader   websocket.Upgrader
}

// New creates the server. voice may be nil, in which case speak requests are refused.
func New(cfg config.Config, svc *translator.Service, voice playback.Voice, metrics *observability.Metrics) *Server {
	if metrics == nil {
		metrics = observability.NewMetrics(cfg.MetricsNamespace)
	}
	return &Server{
		cfg:        cfg,
		translator: svc,
		voice:      voice,
		metrics:    metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 64 << 10,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})

	r.Get("/v1/personas", s.handlePersonas)
	r.Post("/v1/translate", s.handleTranslate)
	r.Post("/v1/bleep", s.handleBleep)
	r.Get("/v1/speak/ws", s.handleSpeakWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"speak_enabled": s.voice != nil,
	})
}

type personaInfo struct {
	ID          persona.ID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cues        []string   `json:"cues"`
	BleepStyle  string     `json:"bleep_style"`
}

func (s *Server) handlePersonas(w http.ResponseWriter, _ *http.Request) {
	out := make([]personaInfo, 0, len(persona.All()))
	for _, id := range persona.All() {
		rule := persona.Lookup(id)
		out = append(out, personaInfo{
			ID:          id,
			Name:        id.DisplayName(),
			Description: rule.Description,
			Cues:        rule.Cues,
			BleepStyle:  rule.BleepStyle,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"personas": out})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translator.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := s.translator.Translate(r.Context(), identityOf(r), req)
	if err != nil {
		respondKindError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type bleepRequest struct {
	Style      string   `json:"style"`
	Text       string   `json:"text"`
	DurationMS int      `json:"duration_ms"`
	Frequency  float64  `json:"frequency_hz"`
	Volume     *float64 `json:"volume"`
	SampleRate int      `json:"sample_rate"`
}

// handleBleep renders one tone as audio/wav. Text sets the duration from its length
// unless duration_ms is given.
func (s *Server) handleBleep(w http.ResponseWriter, r *http.Request) {
	var req bleepRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	params, _ := bleep.Preset(bleep.Style(req.Style))
	if req.Text != "" {
		params = bleep.ForText(req.Text, params)
	}
	if req.DurationMS > 0 {
		if time.Duration(req.DurationMS)*time.Millisecond > bleep.MaxDuration {
			respondError(w, http.StatusBadRequest, "invalid_request", "duration_ms exceeds "+strconv.FormatInt(bleep.MaxDuration.Milliseconds(), 10))
			return
		}
		params.Duration = time.Duration(req.DurationMS) * time.Millisecond
	}
	if req.Frequency > 0 {
		if req.Frequency > 20000 {
			respondError(w, http.StatusBadRequest, "invalid_request", "frequency_hz must be at most 20000")
			return
		}
		params.Frequency = req.Frequency
	}
	if req.Volume != nil {
		if *req.Volume < 0 || *req.Volume > 1 {
			respondError(w, http.StatusBadRequest, "invalid_request", "volume must be between 0 and 1")
			return
		}
		params.Volume = *req.Volume
	}
	if req.SampleRate < 0 || req.SampleRate > 96000 {
		respondError(w, http.StatusBadRequest, "invalid_request", "sample_rate must be at most 96000")
		return
	}

	data, err := bleep.RenderWAV(params, req.SampleRate)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", audio.FormatWAV.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// identityOf keys the rate limiter on client address and user agent.
func identityOf(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return ratelimit.Fingerprint(host, r.UserAgent())
}

type errorResponse struct {
	Error        string `json:"error"`
	Code         string `json:"code"`
	RetryAfterMS int64  `json:"retry_after_ms,omitempty"`
}

// statusFor maps an error kind to the HTTP status returned to clients.
func statusFor(kind reliability.Kind) int {
	switch kind {
	case reliability.KindValidation:
		return http.StatusBadRequest
	case reliability.KindRateLimited:
		return http.StatusTooManyRequests
	case reliability.KindInvalidCredential, reliability.KindGeneration:
		return http.StatusBadGateway
	case reliability.KindTransient, reliability.KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondKindError(w http.ResponseWriter, err error) {
	kind := reliability.KindOf(err)
	status := statusFor(kind)
	resp := errorResponse{Error: err.Error(), Code: kind.String()}
	if kind == reliability.KindRateLimited {
		wait := reliability.RetryAfterOf(err)
		resp.RetryAfterMS = ratelimit.Decision{RetryAfter: wait}.RetryAfterMs()
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
	}
	if status >= http.StatusInternalServerError {
		log.Warn().Err(err).Str("kind", kind.String()).Msg("Request failed")
	}
	respondJSON(w, status, resp)
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64<<10))
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
