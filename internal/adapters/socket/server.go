package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/corey/kwscan/internal/adapters/ahocorasick"
	"go.uber.org/zap"
)

// Backend supplies the daemon's current automaton. Scanner may be called
// from many goroutines at once; the returned scanner is immutable.
type Backend interface {
	Scanner() *ahocorasick.TextScanner
	Dictionary() string
	Reload() (ReloadResult, error)
	Reloads() int64 // successful reloads, whatever triggered them
}

// Server is the daemon that listens on a Unix socket and serves scan requests.
type Server struct {
	backend  Backend
	log      *zap.Logger
	listener net.Listener
	sockPath string
	started  time.Time
	rate     *Throughput

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// throughputWindow is how far back the health scan rate looks.
const throughputWindow = 5 * time.Minute

// NewServer creates a daemon server backed by the given backend.
// A nil logger discards log output.
func NewServer(backend Backend, sockPath string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		backend:    backend,
		log:        log,
		sockPath:   sockPath,
		rate:       NewThroughput(throughputWindow),
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first. If the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		s.log.Info("removing stale socket", zap.String("socket", s.sockPath))
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("listening", zap.String("socket", s.sockPath))
	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent: safe to call multiple times (e.g., after remote shutdown + signal).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
		s.log.Info("stopped", zap.String("socket", s.sockPath))
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.log.Warn("accept failed", zap.Error(err))
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessage)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Warn("connection read failed", zap.Error(err))
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodScan:
		return s.handleScan(req)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodReload:
		return s.handleReload(req)
	case MethodShutdown:
		s.log.Info("remote shutdown requested")
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleScan(req Request) Response {
	// Re-marshal params to decode into ScanParams
	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return Response{ID: req.ID, Error: "invalid scan params"}
	}
	var params ScanParams
	if err := json.Unmarshal(paramsJSON, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid scan params"}
	}

	sc := s.backend.Scanner()
	if sc == nil {
		return Response{ID: req.ID, Error: "no dictionary loaded"}
	}

	start := time.Now()
	content := params.Data
	hits := Hits(sc, content, ahocorasick.ScanOptions{
		WholeWord:  params.WholeWord,
		MaxMatches: params.MaxCount,
	})
	elapsed := time.Since(start)
	s.rate.Record(len(content), elapsed)

	s.log.Debug("scan",
		zap.Int("bytes", len(content)),
		zap.Int("matches", len(hits)),
		zap.Duration("elapsed", elapsed))

	return Response{
		ID: req.ID,
		Result: ScanResult{
			Matches: hits,
			Count:   len(hits),
			Elapsed: elapsed.String(),
		},
	}
}

func (s *Server) handleHealth(req Request) Response {
	result := HealthResult{
		Status:     "ok",
		Dictionary: s.backend.Dictionary(),
		Reloads:    s.backend.Reloads(),
		Uptime:     time.Since(s.started).Round(time.Second).String(),
	}
	bps, n := s.rate.Median(time.Now())
	result.ScanMBps = bps / (1 << 20)
	result.RecentScans = n
	if sc := s.backend.Scanner(); sc != nil {
		stats := sc.Automaton().Stats()
		result.KeywordCount = stats.Keywords
		result.NodeCount = stats.Nodes
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleReload(req Request) Response {
	result, err := s.backend.Reload()
	if err != nil {
		s.log.Error("reload failed", zap.Error(err))
		return Response{ID: req.ID, Error: err.Error()}
	}
	s.log.Info("reloaded",
		zap.String("dict", result.Dictionary),
		zap.Int("keywords", result.KeywordCount))
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}
