package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/louisbranch/livepoll/internal/platform/errors/i18n"
	"github.com/louisbranch/livepoll/internal/platform/timeouts"
	"github.com/samber/lo"
)

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type newQuestionPayload struct {
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

// wsPeer is one open connection. Writes are serialized because both the
// connection's read loop and the coordinator write to it.
type wsPeer struct {
	id       string
	catalog  *i18n.Catalog
	deadline func(time.Time) error

	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(id string, encoder *json.Encoder, catalog *i18n.Catalog, deadline func(time.Time) error) *wsPeer {
	if catalog == nil {
		catalog = i18n.GetCatalog(i18n.BaseLocale)
	}
	return &wsPeer{
		id:       id,
		catalog:  catalog,
		deadline: deadline,
		encoder:  encoder,
	}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deadline != nil {
		if err := p.deadline(time.Now().Add(timeouts.FrameWrite)); err != nil {
			return err
		}
	}
	return p.encoder.Encode(frame)
}

func (p *wsPeer) send(msg Outbound) error {
	return p.writeFrame(encodeOutbound(msg, p.catalog))
}

func encodeOutbound(msg Outbound, catalog *i18n.Catalog) wsFrame {
	switch m := msg.(type) {
	case Registered:
		return wsFrame{Type: m.Type(), RequestID: m.RequestID, Payload: mustJSON(m.Role)}
	case ErrorMessage:
		return wsFrame{Type: m.Type(), RequestID: m.RequestID, Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{
				Code:      string(m.Code),
				Message:   catalog.Format(string(m.Code), m.Metadata),
				Retryable: m.Code.Retryable(),
			},
		})}
	case NewQuestion:
		return wsFrame{Type: m.Type(), Payload: mustJSON(newQuestionPayload{
			Text:             m.Text,
			Options:          m.Options,
			TimeLimitSeconds: m.TimeLimitSeconds,
		})}
	case UpdateVotes:
		return wsFrame{Type: m.Type(), RequestID: m.RequestID, Payload: mustJSON(map[string]int(m.Votes))}
	case TimeUp, TeacherDisconnected:
		return wsFrame{Type: m.Type()}
	default:
		log.Printf("poll: unsupported outbound message %T", msg)
		return wsFrame{Type: msg.Type()}
	}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("poll: marshal websocket frame payload: %v", err)
		return nil
	}
	return b
}

// connectionHub tracks every open connection, registered or not, and
// implements Gateway over them.
type connectionHub struct {
	mu    sync.Mutex
	peers map[string]*wsPeer
}

func newConnectionHub() *connectionHub {
	return &connectionHub{peers: make(map[string]*wsPeer)}
}

func (h *connectionHub) add(peer *wsPeer) {
	h.mu.Lock()
	h.peers[peer.id] = peer
	h.mu.Unlock()
}

func (h *connectionHub) remove(connectionID string) {
	h.mu.Lock()
	delete(h.peers, connectionID)
	h.mu.Unlock()
}

func (h *connectionHub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Send implements Gateway.
func (h *connectionHub) Send(connectionID string, msg Outbound) {
	h.mu.Lock()
	peer, ok := h.peers[connectionID]
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := peer.send(msg); err != nil {
		log.Printf("poll: send %s to conn=%s: %v", msg.Type(), connectionID, err)
	}
}

// Broadcast implements Gateway. Peers are snapshotted so slow writes never
// hold the hub lock.
func (h *connectionHub) Broadcast(msg Outbound) {
	h.mu.Lock()
	peers := lo.Values(h.peers)
	h.mu.Unlock()

	frames := make(map[string]wsFrame)
	for _, peer := range peers {
		locale := peer.catalog.Locale()
		frame, ok := frames[locale]
		if !ok {
			frame = encodeOutbound(msg, peer.catalog)
			frames[locale] = frame
		}
		if err := peer.writeFrame(frame); err != nil {
			log.Printf("poll: broadcast %s to conn=%s: %v", msg.Type(), peer.id, err)
		}
	}
}
