// Package observer serves read-only KPI streams over websockets. The server
// never touches the world: the tick loop publishes marshalled frames into it,
// and sessions consume them at their own cadence.
package observer

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"pizzatorio.dev/internal/observerproto"
	"pizzatorio.dev/internal/sim/world"
)

const (
	defaultEveryTicks = 30
	maxEveryTicks     = 3600
)

// BootstrapInfo is the static run description served to observers.
type BootstrapInfo struct {
	RunID          string
	Seed           int64
	Width          int
	Height         int
	TickRateHz     int
	CatalogDigests map[string]string
}

type Server struct {
	info BootstrapInfo
	log  *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	last atomic.Pointer[world.KPIFrame]

	mu       sync.Mutex
	sessions map[uint64]*session
}

type session struct {
	every atomic.Uint64
	out   chan []byte
}

func NewServer(info BootstrapInfo, logger *log.Logger) *Server {
	return &Server{
		info:     info,
		log:      logger,
		sessions: map[uint64]*session{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Publish fans one KPI frame out to every session whose cadence is due. It
// runs on the tick loop goroutine; the marshal happens at most once per call.
func (s *Server) Publish(frame world.KPIFrame) {
	s.last.Store(&frame)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == 0 {
		return
	}
	var payload []byte
	for _, sess := range s.sessions {
		every := sess.every.Load()
		if every > 1 && frame.Tick%every != 0 {
			continue
		}
		if payload == nil {
			payload = marshalFrame(frame)
		}
		sendLatest(sess.out, payload)
	}
}

func marshalFrame(frame world.KPIFrame) []byte {
	b, _ := json.Marshal(observerproto.KPIMsg{
		Type:            observerproto.TypeKPI,
		ProtocolVersion: observerproto.Version,
		KPIFrame:        frame,
	})
	return b
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		var tick uint64
		if last := s.last.Load(); last != nil {
			tick = last.Tick
		}
		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			RunID:           s.info.RunID,
			Tick:            tick,
			WorldParams: observerproto.WorldParams{
				Width:      s.info.Width,
				Height:     s.info.Height,
				Seed:       s.info.Seed,
				TickRateHz: s.info.TickRateHz,
			},
			CatalogDigests: s.info.CatalogDigests,
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != observerproto.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sid := s.nextID.Add(1)
		sess := &session{out: make(chan []byte, 8)}
		sess.every.Store(normalizeEvery(sub.EveryTicks))

		s.mu.Lock()
		s.sessions[sid] = sess
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sid)
			s.mu.Unlock()
		}()

		if s.log != nil {
			s.log.Printf("observer %d subscribed (every %d ticks)", sid, sess.every.Load())
		}

		// Seed the session with the latest frame so a fresh observer
		// paints immediately instead of waiting out a cadence.
		if last := s.last.Load(); last != nil {
			sendLatest(sess.out, marshalFrame(*last))
		}

		done := make(chan struct{})
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-done:
					writeErr <- nil
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var sub observerproto.SubscribeMsg
			if err := json.Unmarshal(msg, &sub); err != nil {
				continue
			}
			if sub.Type != observerproto.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
				continue
			}
			sess.every.Store(normalizeEvery(sub.EveryTicks))
		}

		close(done)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func normalizeEvery(every uint64) uint64 {
	if every == 0 {
		return defaultEveryTicks
	}
	if every > maxEveryTicks {
		return maxEveryTicks
	}
	return every
}

// sendLatest drops the oldest queued frame when a session lags, so the
// channel always holds the freshest data.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
