package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"slide-quiz/internal/app"
	"slide-quiz/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler runs one quiz engine per websocket connection.
type WSHandler struct {
	loader       app.QuestionLoader
	runs         app.RunRegistry
	settings     app.Settings
	defaultTopic string
	logger       *slog.Logger
	opts         []app.Option
	upgrader     websocket.Upgrader
}

func NewWSHandler(loader app.QuestionLoader, runs app.RunRegistry, settings app.Settings, defaultTopic string, logger *slog.Logger, opts ...app.Option) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		loader:       loader,
		runs:         runs,
		settings:     settings,
		defaultTopic: defaultTopic,
		logger:       logger,
		opts:         opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Topic string `json:"topic"`
}

type selectPayload struct {
	Position int `json:"position"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Topic   string `json:"topic,omitempty"`
}

type readyPayload struct {
	RunID string `json:"runId"`
	Topic string `json:"topic"`
}

type slidePayload struct {
	Index int `json:"index"`
}

type questionPayload struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type markPayload struct {
	Index    int              `json:"index"`
	Position int              `json:"position"`
	State    domain.MarkState `json:"state"`
}

type timerPayload struct {
	Index       int `json:"index"`
	SecondsLeft int `json:"secondsLeft"`
}

// wsRenderer turns engine callbacks into outbound messages. The send channel
// is drained by the connection writer until the engine is closed.
type wsRenderer struct {
	send chan<- outboundMessage[any]
}

func (r wsRenderer) emit(typ string, payload any) {
	r.send <- outboundMessage[any]{Type: typ, Payload: payload}
}

func (r wsRenderer) ShowSlide(index int) {
	r.emit("slide", slidePayload{Index: index})
}

func (r wsRenderer) RenderQuestion(index int, prompt string, options []string) {
	r.emit("question", questionPayload{Index: index, Prompt: prompt, Options: options})
}

func (r wsRenderer) MarkOption(index, position int, state domain.MarkState) {
	r.emit("mark", markPayload{Index: index, Position: position, State: state})
}

func (r wsRenderer) UpdateTimer(index, secondsLeft int) {
	r.emit("timer", timerPayload{Index: index, SecondsLeft: secondsLeft})
}

func (r wsRenderer) ShowResults(summary domain.Summary) {
	r.emit("results", summary)
}

// ServeWS upgrades the request and drives a quiz run over the connection.
// The optional topic query parameter loads a set straight away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	runID := uuid.NewString()
	logger := h.logger.With("run", runID)

	send := make(chan outboundMessage[any], 32)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn("ws write error", "error", err)
				break
			}
		}
		// Keep draining so the engine never blocks on a dead connection.
		for range send {
		}
	}()

	opts := append([]app.Option{app.WithLogger(logger)}, h.opts...)
	engine := app.NewEngine(wsRenderer{send: send}, h.loader, h.settings, opts...)
	h.runs.Register(runID, engine)
	logger.Info("run opened", "remote", r.RemoteAddr)

	topic := r.URL.Query().Get("topic")
	if topic != "" {
		if err := engine.Load(r.Context(), topic); err != nil {
			send <- errorMessage(err)
		}
	}
	send <- outboundMessage[any]{Type: "ready", Payload: readyPayload{RunID: runID, Topic: topic}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid start payload"}}
					continue
				}
			}
			if payload.Topic == "" {
				payload.Topic = h.defaultTopic
			}
			if err := engine.Start(r.Context(), payload.Topic); err != nil {
				send <- errorMessage(err)
			}
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}
				continue
			}
			res, err := engine.Select(payload.Position)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "answer", Payload: res}
		case "reset":
			if err := engine.Reset(); err != nil {
				send <- errorMessage(err)
			}
		case "state":
			send <- outboundMessage[any]{Type: "state", Payload: engine.State()}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	h.runs.Remove(runID)
	engine.Close()
	close(send)
	<-writerDone
	logger.Info("run closed")
}

func errorMessage(err error) outboundMessage[any] {
	payload := errorPayload{Message: err.Error()}
	var loadErr *domain.LoadError
	if errors.As(err, &loadErr) {
		payload.Topic = loadErr.Topic
	}
	return outboundMessage[any]{Type: "error", Payload: payload}
}
