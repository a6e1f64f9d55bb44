package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/livepoll/internal/platform/errors"
	"github.com/louisbranch/livepoll/internal/platform/errors/i18n"
	"github.com/louisbranch/livepoll/internal/platform/id"
	"github.com/samber/lo"
	"golang.org/x/net/websocket"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
)

// handlerConfig carries the transport settings shared by every connection.
type handlerConfig struct {
	allowedOrigin string
	defaultLocale string
}

type registerPayload struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

type optionPayload struct {
	Text string `json:"text"`
}

type askQuestionPayload struct {
	Question  string          `json:"question"`
	Options   []optionPayload `json:"options"`
	TimeLimit seconds         `json:"timeLimit"`
}

type submitAnswerPayload struct {
	Answer string `json:"answer"`
}

// seconds accepts a JSON number or a numeric string, since browser forms
// submit the time limit as text.
type seconds int

func (s *seconds) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = seconds(n)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	*s = seconds(n)
	return nil
}

// newHandler creates poll routes backed by coordinator and hub.
func newHandler(coordinator *Coordinator, hub *connectionHub, cfg handlerConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsServer := websocket.Server{
		// Origin is checked before the upgrade; the default handshake would
		// reject clients that send none.
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			handleWSConn(conn, coordinator, hub, cfg.defaultLocale)
		},
	}

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !originAllowed(cfg.allowedOrigin, r.Header.Get("Origin")) {
			log.Printf("poll: websocket forbidden: origin=%q remote=%s", r.Header.Get("Origin"), r.RemoteAddr)
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}
		wsServer.ServeHTTP(w, r)
	})

	return mux
}

func originAllowed(allowed string, origin string) bool {
	allowed = strings.TrimRight(strings.TrimSpace(allowed), "/")
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if allowed == "" || allowed == "*" || origin == "" {
		return true
	}
	return strings.EqualFold(allowed, origin)
}

func requestLocale(r *http.Request, fallback string) string {
	if r == nil {
		return i18n.MatchLocale(fallback)
	}
	return i18n.MatchLocale(fallback, r.URL.Query().Get("locale"), r.Header.Get("Accept-Language"))
}

func handleWSConn(conn *websocket.Conn, coordinator *Coordinator, hub *connectionHub, defaultLocale string) {
	defer func() {
		_ = conn.Close()
	}()

	connectionID, err := id.NewConnectionID()
	if err != nil {
		log.Printf("poll: allocate connection id: %v", err)
		return
	}

	ctx := context.Background()
	request := conn.Request()
	if request != nil {
		ctx = request.Context()
	}
	locale := requestLocale(request, defaultLocale)

	peer := newWSPeer(connectionID, json.NewEncoder(conn), i18n.GetCatalog(locale), conn.SetWriteDeadline)
	hub.add(peer)
	log.Printf("poll: conn=%s connected locale=%s open=%d", connectionID, peer.catalog.Locale(), hub.len())
	defer func() {
		hub.remove(connectionID)
		// The request context is already done here; the departure must still
		// reach the loop.
		if err := coordinator.Disconnect(context.Background(), connectionID); err != nil && !errors.Is(err, ErrCoordinatorStopped) {
			log.Printf("poll: disconnect conn=%s: %v", connectionID, err)
		}
		log.Printf("poll: conn=%s closed open=%d", connectionID, hub.len())
	}()

	decoder := json.NewDecoder(conn)
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return
			}
			decodeErrors++
			log.Printf("poll: conn=%s invalid frame: %v", connectionID, err)
			_ = writeWSError(peer, "", apperrors.CodeInvalidArgument, "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			// A JSON syntax error leaves the decoder unusable.
			decoder = json.NewDecoder(conn)
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeInvalidArgument, "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeResourceExhausted, "")
			return
		}

		msg, err := decodeInbound(frame)
		if err != nil {
			_ = peer.send(ErrorMessage{
				RequestID: frame.RequestID,
				Code:      apperrors.CodeOf(err),
				Metadata:  apperrors.MetadataOf(err),
			})
			continue
		}
		if err := coordinator.Dispatch(ctx, connectionID, frame.RequestID, msg); err != nil {
			log.Printf("poll: dispatch %s conn=%s: %v", frame.Type, connectionID, err)
			return
		}
	}
}

// decodeInbound maps a frame onto its inbound variant. Malformed register
// payloads fail here; malformed questions and answers become empty variants
// so the coordinator applies its usual checks in order.
func decodeInbound(frame wsFrame) (Inbound, error) {
	switch frame.Type {
	case TypeRegister:
		var payload registerPayload
		if err := unmarshalPayload(frame.Payload, &payload); err != nil {
			return nil, invalidPayload(apperrors.CodeInvalidArgument, "invalid register payload", err)
		}
		return Register{Role: payload.Role, Name: payload.Name}, nil
	case TypeAskQuestion:
		var payload askQuestionPayload
		if err := unmarshalPayload(frame.Payload, &payload); err != nil {
			// An empty question still goes through the teacher check first and
			// then fails validation.
			log.Printf("poll: malformed %s payload: %v", frame.Type, err)
			return AskQuestion{}, nil
		}
		return AskQuestion{
			Text: payload.Question,
			Options: lo.Map(payload.Options, func(option optionPayload, _ int) string {
				return option.Text
			}),
			TimeLimitSeconds: int(payload.TimeLimit),
		}, nil
	case TypeSubmitAnswer:
		answer, err := decodeAnswer(frame.Payload)
		if err != nil {
			// No option is blank, so an empty answer is rejected after the
			// active question check.
			log.Printf("poll: malformed %s payload: %v", frame.Type, err)
			return SubmitAnswer{}, nil
		}
		return SubmitAnswer{Answer: answer}, nil
	case TypeGetLiveVotes:
		return GetLiveVotes{}, nil
	default:
		return nil, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "unsupported frame type", map[string]string{
			"reason": "unsupported frame type",
		})
	}
}

// decodeAnswer accepts {"answer": "..."} or a bare JSON string.
func decodeAnswer(raw json.RawMessage) (string, error) {
	var answer string
	if err := json.Unmarshal(raw, &answer); err == nil {
		return answer, nil
	}
	var payload submitAnswerPayload
	if err := unmarshalPayload(raw, &payload); err != nil {
		return "", err
	}
	return payload.Answer, nil
}

func unmarshalPayload(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return errors.New("payload is required")
	}
	return json.Unmarshal(raw, target)
}

func invalidPayload(code apperrors.Code, reason string, cause error) error {
	return &apperrors.Error{
		Code:     code,
		Message:  reason,
		Metadata: map[string]string{"reason": reason},
		Cause:    cause,
	}
}

func writeWSError(peer *wsPeer, requestID string, code apperrors.Code, reason string) error {
	var metadata map[string]string
	if reason != "" {
		metadata = map[string]string{"reason": reason}
	}
	return peer.send(ErrorMessage{RequestID: requestID, Code: code, Metadata: metadata})
}
