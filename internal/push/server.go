package push

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint:gosec // mandated by the WebSocket handshake, not used for security
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akropp/savant-relay/internal/infrastructure/config"
	"github.com/akropp/savant-relay/internal/infrastructure/logging"
	"github.com/akropp/savant-relay/internal/state"
)

// websocketGUID is the fixed key-derivation constant from RFC 6455.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85AA9"

// handshakeTimeout bounds how long a freshly accepted socket may take to
// complete the HTTP upgrade.
const handshakeTimeout = 10 * time.Second

// Server is the WebSocket push endpoint. It accepts raw TCP connections,
// performs the HTTP upgrade handshake itself, and fans state events out to
// every connected client as JSON text frames.
//
// Clients are consumers only: inbound text and binary frames are discarded.
// The server pings idle connections and evicts any client that fails a
// write or stops answering pings.
type Server struct {
	cfg    config.PushConfig
	logger *logging.Logger

	pingInterval time.Duration
	writeTimeout time.Duration

	listener net.Listener
	wg       sync.WaitGroup

	mu     sync.Mutex
	conns  map[string]*client
	closed bool
}

// client is one upgraded connection. Writes are serialised per connection
// so broadcast frames and control replies never interleave.
type client struct {
	id   string
	conn net.Conn

	writeMu sync.Mutex
}

// NewServer creates a push Server. Call Start to begin listening.
func NewServer(cfg config.PushConfig, logger *logging.Logger) *Server {
	return &Server{
		cfg:          cfg,
		logger:       logger.With("component", "push"),
		pingInterval: time.Duration(cfg.PingInterval) * time.Second,
		writeTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		conns:        make(map[string]*client),
	}
}

// Start binds the listen socket and begins accepting connections. A bind
// failure is returned immediately; accept errors after a successful bind
// are logged, not fatal.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("push listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.logger.Info("push server listening", "address", addr)

	s.wg.Add(1)
	go s.acceptLoop(ctx)
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("push accept error", "error", err)
			continue
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn upgrades the socket and services it until the client leaves
// or stops responding.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()

	reader := bufio.NewReader(conn)
	if err := s.handshake(conn, reader); err != nil {
		s.logger.Debug("push handshake rejected", "remote", conn.RemoteAddr().String(), "error", err)
		conn.Close() //nolint:errcheck // rejection path
		return
	}

	c := &client{id: uuid.New().String(), conn: conn}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close() //nolint:errcheck // server shutting down
		return
	}
	s.conns[c.id] = c
	count := len(s.conns)
	s.mu.Unlock()
	s.logger.Info("push client connected", "conn_id", c.id, "remote", conn.RemoteAddr().String(), "clients", count)

	s.readLoop(c, reader)
	s.drop(c, "read loop ended")
}

// handshake validates the HTTP upgrade request and answers with 101.
func (s *Server) handshake(conn net.Conn, reader *bufio.Reader) error {
	if err := conn.SetDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		return fmt.Errorf("setting handshake deadline: %w", err)
	}

	req, err := http.ReadRequest(reader)
	if err != nil {
		return fmt.Errorf("reading upgrade request: %w", err)
	}
	if req.Method != http.MethodGet {
		return fmt.Errorf("method %s not allowed", req.Method)
	}
	if !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
		return errors.New("missing Upgrade: websocket header")
	}
	if !headerContainsToken(req.Header.Get("Connection"), "upgrade") {
		return errors.New("missing Connection: Upgrade header")
	}
	if req.Header.Get("Sec-WebSocket-Version") != "13" {
		return fmt.Errorf("unsupported websocket version %q", req.Header.Get("Sec-WebSocket-Version"))
	}
	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		return errors.New("missing Sec-WebSocket-Key header")
	}

	response := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + acceptKey(key) + "\r\n\r\n"
	if _, err := conn.Write([]byte(response)); err != nil {
		return fmt.Errorf("writing upgrade response: %w", err)
	}

	// Handshake deadline no longer applies; the read loop manages its own.
	return conn.SetDeadline(time.Time{})
}

// acceptKey derives the Sec-WebSocket-Accept value for a client key.
func acceptKey(key string) string {
	h := sha1.Sum([]byte(key + websocketGUID)) //nolint:gosec // RFC 6455 handshake
	return base64.StdEncoding.EncodeToString(h[:])
}

// headerContainsToken reports whether a comma-separated header value
// contains the given token, case-insensitively.
func headerContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// readLoop services inbound frames. The read deadline doubles as the idle
// detector: when it expires the client gets one ping, and a second silent
// interval disconnects it.
func (s *Server) readLoop(c *client, reader *bufio.Reader) {
	pinged := false
	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(s.pingInterval)); err != nil {
			return
		}

		f, err := readFrame(reader)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() && !pinged {
				if pingErr := c.write(s.writeTimeout, opPing, nil); pingErr != nil {
					return
				}
				pinged = true
				continue
			}
			return
		}
		pinged = false

		switch f.opcode {
		case opClose:
			// Echo the close and let the client tear down.
			_ = c.write(s.writeTimeout, opClose, f.payload)
			return
		case opPing:
			if err := c.write(s.writeTimeout, opPong, f.payload); err != nil {
				return
			}
		case opPong, opText, opBinary, opContinuation:
			// Pongs reset the idle detector above; data frames from
			// clients carry no meaning on this channel.
		}
	}
}

// Broadcast sends an event to every connected client. Clients whose write
// fails are evicted so one stuck socket cannot stall the stream.
func (s *Server) Broadcast(ev state.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("marshalling push event failed", "type", string(ev.Type), "error", err)
		return
	}

	s.mu.Lock()
	targets := make([]*client, 0, len(s.conns))
	for _, c := range s.conns {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.write(s.writeTimeout, opText, payload); err != nil {
			s.logger.Warn("push write failed, evicting client", "conn_id", c.id, "error", err)
			s.drop(c, "write failure")
		}
	}
}

// ClientCount returns the number of connected push clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// drop removes a client from the registry and closes its socket.
// Safe to call more than once for the same client.
func (s *Server) drop(c *client, reason string) {
	s.mu.Lock()
	_, present := s.conns[c.id]
	delete(s.conns, c.id)
	s.mu.Unlock()

	c.conn.Close() //nolint:errcheck // teardown path
	if present {
		s.logger.Info("push client disconnected", "conn_id", c.id, "reason", reason)
	}
}

// Close stops the listener and disconnects all clients.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	targets := make([]*client, 0, len(s.conns))
	for _, c := range s.conns {
		targets = append(targets, c)
	}
	s.conns = make(map[string]*client)
	s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for _, c := range targets {
		_ = c.write(s.writeTimeout, opClose, nil)
		c.conn.Close() //nolint:errcheck // teardown path
	}
	s.wg.Wait()
	s.logger.Info("push server stopped")
	return err
}

// HealthCheck reports whether the listener is up.
func (s *Server) HealthCheck(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.listener == nil {
		return errors.New("push server not running")
	}
	return nil
}

// write sends one frame under the connection's write lock with a deadline.
func (c *client) write(timeout time.Duration, opcode byte, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return writeFrame(c.conn, opcode, payload)
}
