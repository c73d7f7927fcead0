package observer

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	readWait   = 60 * time.Second
	outQueue   = 8
	closeGrace = 500 * time.Millisecond
)

type client struct {
	id  uint64
	out chan []byte
}

// Server fans JSON frames out to websocket observers. Observers are
// read-only; anything they send is discarded. A slow observer drops frames
// rather than stalling the tick.
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uint64]*client
	nextID  atomic.Uint64
	sent    atomic.Uint64
	dropped atomic.Uint64

	http *http.Server
	log  *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]*client),
		log:     log,
	}
}

// Handler upgrades the request and serves one observer until it leaves.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Debug("observer upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		c := &client{id: s.nextID.Add(1), out: make(chan []byte, outQueue)}
		hello, _ := json.Marshal(Hello{Type: "hello", Protocol: ProtocolVersion, Client: c.id})
		c.out <- hello
		s.add(c)
		defer s.remove(c.id)

		s.log.Info("observer joined", zap.Uint64("client", c.id), zap.String("remote", r.RemoteAddr))

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-c.out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(readWait))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))
		select {
		case <-writeErr:
		case <-time.After(closeGrace):
		}
		s.log.Info("observer left", zap.Uint64("client", c.id))
	}
}

// Broadcast encodes v once and queues it for every observer.
func (s *Server) Broadcast(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		select {
		case c.out <- b:
			s.sent.Add(1)
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}

// Clients returns the number of connected observers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Stats returns the number of frames queued and dropped so far.
func (s *Server) Stats() (sent, dropped uint64) {
	return s.sent.Load(), s.dropped.Load()
}

// Start listens on addr and serves the websocket at path in the background.
// It returns the bound address.
func (s *Server) Start(addr, path string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(path, s.Handler())
	s.http = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("observer server stopped", zap.Error(err))
		}
	}()
	s.log.Info("observer listening", zap.String("addr", ln.Addr().String()), zap.String("path", path))
	return ln.Addr(), nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) add(c *client) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
}

func (s *Server) remove(id uint64) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
}
