package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/seismeta/internal/adapters/nats"
	"github.com/samirrijal/seismeta/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// wsMessage is a client request to change its event feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Survey  string `json:"survey"`  // survey ID filter, "" = all
	Channel string `json:"channel"` // "bingrid" (default) | "surveys"
}

type wsReply struct {
	Status  string `json:"status,omitempty"`
	Subject string `json:"subject,omitempty"`
	Error   string `json:"error,omitempty"`
}

// wsSubject resolves a client message to a NATS subject.
func wsSubject(m wsMessage) (string, bool) {
	switch m.Channel {
	case "", "bingrid":
		if m.Survey != "" {
			return natsadapter.BinGridSubject(m.Survey), true
		}
		return natsadapter.SubjectBinGridPrefix + ">", true
	case "surveys":
		return "seismic.survey.>", true
	default:
		return "", false
	}
}

// wsSession holds one client's NATS subscriptions. Writes are serialized
// because NATS callbacks and the ping loop share the connection.
type wsSession struct {
	conn *websocket.Conn
	nc   *nats.Conn

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

func (s *wsSession) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(messageType, data)
}

func (s *wsSession) reply(r wsReply) {
	data, _ := json.Marshal(r)
	_ = s.write(websocket.TextMessage, data)
}

func (s *wsSession) relay(msg *nats.Msg) {
	_ = s.write(websocket.TextMessage, msg.Data)
}

func (s *wsSession) subscribe(subject string) error {
	if _, ok := s.subs[subject]; ok {
		s.reply(wsReply{Status: "already subscribed", Subject: subject})
		return nil
	}
	sub, err := s.nc.Subscribe(subject, s.relay)
	if err != nil {
		return err
	}
	s.subs[subject] = sub
	return nil
}

func (s *wsSession) handle(m wsMessage) {
	subject, ok := wsSubject(m)
	if !ok {
		s.reply(wsReply{Error: "unknown channel: " + m.Channel})
		return
	}

	switch m.Action {
	case "subscribe":
		if err := s.subscribe(subject); err != nil {
			s.reply(wsReply{Error: "subscribe failed: " + err.Error()})
			return
		}
		s.reply(wsReply{Status: "subscribed", Subject: subject})
	case "unsubscribe":
		sub, ok := s.subs[subject]
		if !ok {
			s.reply(wsReply{Error: "not subscribed to " + subject})
			return
		}
		_ = sub.Unsubscribe()
		delete(s.subs, subject)
		s.reply(wsReply{Status: "unsubscribed", Subject: subject})
	default:
		s.reply(wsReply{Error: "unknown action: " + m.Action})
	}
}

func (s *wsSession) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *wsSession) close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
}

// WebSocketHandler relays survey and bin grid events to connected clients.
// New clients receive every derived bin grid until they change feeds with
// {"action":"subscribe","survey":"<id>","channel":"bingrid"}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		if nc == nil {
			_ = c.WriteJSON(wsReply{Error: "event stream unavailable"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remote := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remote)

		s := &wsSession{conn: c, nc: nc, subs: make(map[string]*nats.Subscription)}
		defer s.close()

		defaultSubject, _ := wsSubject(wsMessage{})
		if err := s.subscribe(defaultSubject); err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}

		done := make(chan struct{})
		defer close(done)
		go s.keepAlive(done)

		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				break
			}
			var m wsMessage
			if err := json.Unmarshal(data, &m); err != nil {
				s.reply(wsReply{Error: "invalid JSON"})
				continue
			}
			s.handle(m)
		}

		slog.Info("ws client disconnected", "remote", remote)
	}
}
