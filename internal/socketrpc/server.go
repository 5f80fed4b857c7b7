package socketrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/model"

	"go.uber.org/zap"
)

const (
	// scannerInitBufSize is the initial buffer size for the per-connection scanner (64 KB).
	scannerInitBufSize = 64 * 1024
	// scannerMaxTokenSize is the maximum token size the scanner will accept (1 MB).
	scannerMaxTokenSize = 1024 * 1024
	// callTimeout bounds one dispatched call.
	callTimeout = 10 * time.Second
)

// Server exposes a model.TrackerAPI over a Unix domain socket using JSON-RPC 2.0.
type Server struct {
	socketPath string
	api        model.TrackerAPI
	log        *zap.Logger
	listener   net.Listener
	wg         sync.WaitGroup
	quit       chan struct{}
	stopOnce   sync.Once

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer creates a new socket RPC server. A nil logger discards log output.
func NewServer(socketPath string, api model.TrackerAPI, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		socketPath: socketPath,
		api:        api,
		log:        log,
		quit:       make(chan struct{}),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start begins listening on the Unix socket and accepting connections.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("socketrpc: mkdir: %w", err)
	}

	// Remove stale socket if it exists.
	if _, err := os.Stat(s.socketPath); err == nil {
		conn, dialErr := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond)
		if dialErr != nil {
			// Socket file exists but nobody is listening.
			os.Remove(s.socketPath)
		} else {
			conn.Close()
			return fmt.Errorf("socketrpc: another server is already listening on %s", s.socketPath)
		}
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("socketrpc: listen: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("socketrpc: listening", zap.String("path", s.socketPath))
	return nil
}

// Stop closes the listener and open connections, waits for handlers to
// return, and removes the socket file. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
		s.wg.Wait()
		os.Remove(s.socketPath)
	})
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				s.log.Warn("socketrpc: accept error", zap.Error(err))
				// Transient errors (e.g. fd limit) must not end the loop.
				continue
			}
		}
		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.quit:
		return false
	default:
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		select {
		case <-s.quit:
			return
		default:
		}

		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			resp := Response{JSONRPC: protocolVersion, Error: &RPCError{Code: codeParse, Message: "parse error"}}
			encoder.Encode(resp)
			continue
		}

		resp := s.dispatch(req)
		if err := encoder.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	resp := Response{JSONRPC: protocolVersion, ID: req.ID}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	fail := func(code int, err error) Response {
		resp.Error = &RPCError{Code: code, Message: err.Error()}
		return resp
	}

	marshalResult := func(v any, err error) Response {
		if errors.Is(err, model.ErrNotFound) {
			return fail(codeUnknownUser, err)
		}
		if err != nil {
			return fail(codeApplication, err)
		}
		data, merr := json.Marshal(v)
		if merr != nil {
			return fail(codeInternal, merr)
		}
		resp.Result = data
		return resp
	}

	invalidParams := func(err error) Response {
		return fail(codeInvalid, fmt.Errorf("invalid params: %w", err))
	}

	userID := func(email string) (string, error) {
		u, err := s.api.UserByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		return u.ID, nil
	}

	switch req.Method {
	case "Summary":
		var p struct{ Email string }
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		id, err := userID(p.Email)
		if err != nil {
			return marshalResult(nil, err)
		}
		return marshalResult(s.api.Summary(ctx, id))

	case "RecentActions":
		var p struct {
			Email string
			Limit int
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		id, err := userID(p.Email)
		if err != nil {
			return marshalResult(nil, err)
		}
		return marshalResult(s.api.RecentActions(ctx, id, p.Limit))

	case "Habits":
		var p struct{ Email string }
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		id, err := userID(p.Email)
		if err != nil {
			return marshalResult(nil, err)
		}
		return marshalResult(s.api.Habits(ctx, id))

	case "CompleteAction":
		var p struct {
			Email    string
			ActionID string
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		id, err := userID(p.Email)
		if err != nil {
			return marshalResult(nil, err)
		}
		return marshalResult(s.api.CompleteAction(ctx, id, p.ActionID))

	case "SubmitSurvey":
		var p struct {
			Email    string
			Category string
			Answers  footprint.Answers
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return invalidParams(err)
		}
		c, err := footprint.ParseCategory(p.Category)
		if err != nil {
			return invalidParams(err)
		}
		id, err := userID(p.Email)
		if err != nil {
			return marshalResult(nil, err)
		}
		return marshalResult(s.api.SubmitSurvey(ctx, id, c, p.Answers))

	case "Catalog":
		return marshalResult(s.api.Catalog(), nil)

	default:
		return fail(codeNoMethod, fmt.Errorf("method not found: %s", req.Method))
	}
}
