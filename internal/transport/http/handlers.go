package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"jeopardy-board/internal/app"
	"jeopardy-board/internal/domain"
	"jeopardy-board/internal/game"
)

var errUnsupported = errors.New("unsupported message type")

const qrSize = 320

// NewRouter registers the board routes.
func NewRouter(service *app.BoardService, publicURL string, log zerolog.Logger) http.Handler {
	ws := NewWSHandler(service, log)
	h := &apiHandler{
		service:    service,
		publicURL:  strings.TrimSuffix(publicURL, "/"),
		log:        log,
		scoreboard: writeScoreboard,
	}

	mux := httprouter.New()
	mux.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.GET("/rounds", h.listRounds)
	mux.POST("/sessions", h.createSession)
	mux.GET("/sessions/:id", h.getSession)
	mux.DELETE("/sessions/:id", h.closeSession)
	mux.GET("/sessions/:id/ws", ws.ServeWS)
	mux.GET("/sessions/:id/qr", h.qr)
	mux.GET("/sessions/:id/scores.xlsx", h.exportScores)
	return mux
}

type apiHandler struct {
	service    *app.BoardService
	publicURL  string
	log        zerolog.Logger
	scoreboard func(io.Writer, game.Snapshot) error
}

func (h *apiHandler) listRounds(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rounds, err := h.service.ListRounds(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list rounds failed")
		http.Error(w, "could not list rounds", http.StatusBadGateway)
		return
	}
	if rounds == nil {
		rounds = []domain.RoundMetadata{}
	}
	writeJSON(w, http.StatusOK, rounds)
}

func (h *apiHandler) createSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	state, err := h.service.CreateSession(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *apiHandler) getSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	state, err := h.service.Snapshot(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *apiHandler) closeSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.CloseSession(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// qr renders a PNG QR code pointing at the session, so phones can join as buzzers.
func (h *apiHandler) qr(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if _, err := h.service.Snapshot(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	base := h.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}

	png, err := qrcode.Encode(base+"/sessions/"+id, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *apiHandler) exportScores(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	state, err := h.service.Snapshot(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := h.scoreboard(&buf, state); err != nil {
		h.log.Error().Err(err).Str("session", state.SessionID).Msg("scoreboard export failed")
		http.Error(w, "could not export scores", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="scores-`+time.Now().Format("20060102-1504")+`.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func decode(in inboundMessage, v any) error {
	if len(in.Payload) == 0 {
		return errors.New("missing " + in.Type + " payload")
	}
	if err := json.Unmarshal(in.Payload, v); err != nil {
		return errors.New("invalid " + in.Type + " payload")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrRoundNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// WithRequestLog logs every request except websocket traffic at info level.
func WithRequestLog(next http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if strings.HasSuffix(r.URL.Path, "/ws") {
			return
		}
		log.Info().Str("method", r.Method).Str("path", r.URL.Path).Int("status", rec.status).Dur("dur", time.Since(start)).Msg("http")
	})
}
