// Package debug serves live graph-introspection snapshots (spec
// §4.8) over WebSocket, so an external tool can watch a pipeline's
// shape and backpressure state change over time without instrumenting
// the pipeline itself.
//
// Adapted from the teacher's pkg/transport/ws/server.go: the same
// interruptible-listener shutdown dance, now serving JSON graph
// snapshots instead of RSocket frames.
package debug

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/reactivego/streams/pkg/introspect"
)

// Server is a running debug endpoint.
type Server interface {
	Serve() error
	Shutdown()
	AwaitShutdown()
	// ListenAddr returns the bound address, useful when Listen was
	// given a port of 0.
	ListenAddr() string
}

// Snapshot produces the graph to publish on each tick. Called once
// per connected client per tick, so it should be cheap or memoized by
// the caller if scanning is expensive.
type Snapshot func() *introspect.Graph

// Listen binds address and returns a Server that, once Serve is
// called, pushes a JSON graph snapshot to every connected WebSocket
// client every interval.
func Listen(address string, snapshot Snapshot, interval time.Duration, log *zap.Logger) (Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	laddr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, err
	}
	listener, err := net.ListenTCP("tcp", laddr)
	if err != nil {
		return nil, err
	}

	return &server{
		listener: &interruptibleListener{
			TCPListener: listener,
			control:     make(chan struct{}),
		},
		snapshot:        snapshot,
		interval:        interval,
		log:             log,
		shutdownWaiters: &sync.WaitGroup{},
	}, nil
}

type server struct {
	listener        *interruptibleListener
	snapshot        Snapshot
	interval        time.Duration
	log             *zap.Logger
	shutdownWaiters *sync.WaitGroup
}

func (s *server) Serve() error {
	s.shutdownWaiters.Add(1)
	defer s.shutdownWaiters.Done()
	defer s.listener.Close()

	h := &websocket.Server{Handler: s.handle}
	httpServer := &http.Server{
		Addr:    s.listener.Addr().String(),
		Handler: h,
	}

	err := httpServer.Serve(s.listener)
	if errors.Is(err, errShutdown) {
		return nil
	}
	return err
}

func (s *server) Shutdown() { s.listener.shutdown() }

func (s *server) AwaitShutdown() { s.shutdownWaiters.Wait() }

func (s *server) ListenAddr() string { return s.listener.Addr().String() }

func (s *server) handle(ws *websocket.Conn) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer ws.Close()

	for range ticker.C {
		g := s.snapshot()
		if g == nil {
			continue
		}
		data, err := g.MarshalJSONAt(time.Now())
		if err != nil {
			s.log.Error("failed to marshal graph snapshot", zap.Error(err))
			return
		}
		if err := websocket.Message.Send(ws, string(data)); err != nil {
			return
		}
	}
}

var errShutdown = errors.New("induced shutdown")

// interruptibleListener injects a stop error into the Accept loop,
// since net/http.Server has no listener-level cancellation hook.
type interruptibleListener struct {
	*net.TCPListener
	control chan struct{}
	once    sync.Once
}

func (l *interruptibleListener) Accept() (net.Conn, error) {
	for {
		l.SetDeadline(time.Now().Add(time.Second))

		conn, err := l.TCPListener.Accept()

		select {
		case <-l.control:
			return nil, errShutdown
		default:
		}

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
		}

		return conn, err
	}
}

func (l *interruptibleListener) shutdown() {
	l.once.Do(func() { close(l.control) })
}
