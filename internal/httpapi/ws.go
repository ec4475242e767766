package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/daikw/angertranslator/internal/audio"
	"github.com/daikw/angertranslator/internal/bleep"
	"github.com/daikw/angertranslator/internal/playback"
	"github.com/daikw/angertranslator/internal/reliability"
	"github.com/daikw/angertranslator/internal/translator"
)

// Speak socket message types
const (
	msgSpeak       = "speak"
	msgStop        = "stop"
	msgTranslation = "translation"
	msgSegment     = "segment"
	msgDone        = "done"
	msgError       = "error"
)

type clientMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Persona   string `json:"persona"`
	Intensity int    `json:"intensity"`
}

type translationEvent struct {
	Type   string             `json:"type"`
	Result *translator.Result `json:"result"`
}

// segmentEvent precedes the binary frame carrying the segment audio.
type segmentEvent struct {
	Type       string `json:"type"`
	Seq        int64  `json:"seq"`
	Kind       string `json:"kind"`
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Bytes      int    `json:"bytes"`
}

type doneEvent struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type errorEvent struct {
	Type         string `json:"type"`
	Code         string `json:"code"`
	Error        string `json:"error"`
	RetryAfterMS int64  `json:"retry_after_ms,omitempty"`
}

type wsFrame struct {
	header any
	audio  []byte
}

// wsSink plays segments by streaming them to the socket. It serves as both
// the speech player and the tone player of a connection's orchestrator.
type wsSink struct {
	connCtx  context.Context
	outbound chan<- wsFrame
	seq      atomic.Int64
}

func (k *wsSink) Play(ctx context.Context, clip audio.Clip) error {
	return k.send(ctx, "text", clip)
}

func (k *wsSink) PlayTone(ctx context.Context, p bleep.Params) error {
	return k.send(ctx, "bleep", bleep.Clip(p, audio.DefaultSampleRate))
}

func (k *wsSink) send(ctx context.Context, kind string, clip audio.Clip) error {
	clip, err := clip.Playable()
	if err != nil {
		return reliability.New(reliability.KindAudioDevice, "ws.play", err)
	}
	frame := wsFrame{
		header: segmentEvent{
			Type:       msgSegment,
			Seq:        k.seq.Add(1),
			Kind:       kind,
			Format:     string(clip.Format),
			SampleRate: clip.SampleRate,
			Bytes:      len(clip.Data),
		},
		audio: clip.Data,
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-k.connCtx.Done():
		return reliability.New(reliability.KindAudioDevice, "ws.play", fmt.Errorf("connection closed"))
	case k.outbound <- frame:
		return nil
	}
}

func (s *Server) handleSpeakWS(w http.ResponseWriter, r *http.Request) {
	if s.voice == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "voice synthesis not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	identity := identityOf(r)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan wsFrame, 64)
	sink := &wsSink{connCtx: ctx, outbound: outbound}
	orch := playback.New(s.voice, sink, sink, playback.WithGap(0), playback.WithObserver(s.metrics))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case frame := <-outbound:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(frame.header); err != nil {
					cancel()
					return
				}
				if frame.audio != nil {
					if err := conn.WriteMessage(websocket.BinaryMessage, frame.audio); err != nil {
						cancel()
						return
					}
				}
				s.metrics.WSMessage("outbound", headerType(frame.header))
			}
		}
	}()

	send := func(v any) {
		select {
		case <-ctx.Done():
		case outbound <- wsFrame{header: v}:
		}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		pending context.CancelFunc
	)
	stopPending := func() {
		mu.Lock()
		defer mu.Unlock()
		if pending != nil {
			pending()
			pending = nil
		}
	}

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		if msgType != websocket.TextMessage {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			send(errorEvent{Type: msgError, Code: "invalid_client_message", Error: err.Error()})
			continue
		}
		s.metrics.WSMessage("inbound", msg.Type)

		switch msg.Type {
		case msgStop:
			stopPending()
			orch.Stop()
		case msgSpeak:
			stopPending()
			speakCtx, speakCancel := context.WithCancel(ctx)
			mu.Lock()
			pending = speakCancel
			mu.Unlock()

			wg.Add(1)
			go func(req translator.Request) {
				defer wg.Done()
				defer speakCancel()
				s.speak(speakCtx, orch, identity, req, send)
			}(translator.Request{Text: msg.Text, Persona: msg.Persona, Intensity: msg.Intensity})
		default:
			send(errorEvent{Type: msgError, Code: "invalid_client_message", Error: fmt.Sprintf("unknown message type %q", msg.Type)})
		}
	}

	cancel()
	orch.Stop()
	wg.Wait()
	<-writerDone
}

// speak translates req and streams its segments in order.
func (s *Server) speak(ctx context.Context, orch *playback.Orchestrator, identity string, req translator.Request, send func(any)) {
	res, err := s.translator.Translate(ctx, identity, req)
	if err != nil {
		kind := reliability.KindOf(err)
		ev := errorEvent{Type: msgError, Code: kind.String(), Error: err.Error()}
		if kind == reliability.KindRateLimited {
			ev.RetryAfterMS = reliability.RetryAfterOf(err).Milliseconds()
		}
		send(ev)
		return
	}
	send(translationEvent{Type: msgTranslation, Result: res})

	h := orch.SpeakSequence(ctx, res.Segments, res.Persona, res.Intensity)
	err = h.Wait()

	done := doneEvent{Type: msgDone, ID: h.ID.String(), Outcome: playback.OutcomeCompleted}
	switch {
	case err != nil:
		done.Outcome = playback.OutcomeFailed
		done.Error = err.Error()
		s.metrics.ExternalError("voice", err)
		log.Debug().Err(err).Str("sequence", h.ID.String()).Msg("Speak sequence failed")
	case h.State() == playback.Cancelled:
		done.Outcome = playback.OutcomeCancelled
	}
	send(done)
}

func headerType(v any) string {
	switch e := v.(type) {
	case segmentEvent:
		return e.Type
	case translationEvent:
		return e.Type
	case doneEvent:
		return e.Type
	case errorEvent:
		return e.Type
	default:
		return "unknown"
	}
}
