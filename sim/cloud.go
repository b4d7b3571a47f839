package sim

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thesyncim/edge"
)

// MaxCustomMessageSize is the largest custom message payload in bytes.
const MaxCustomMessageSize = 256

// Custom message methods carried in Envelope.Method.
const (
	MethodToDevice   = "custom_data_transmission_to_esdk"
	MethodFromDevice = "custom_data_transmission_from_esdk"
)

// Envelope is the JSON frame exchanged with the cloud.
type Envelope struct {
	TID       string     `json:"tid"`
	BID       string     `json:"bid"`
	Timestamp int64      `json:"timestamp"`
	Method    string     `json:"method"`
	Data      CustomData `json:"data"`
}

// CustomData is the payload of a custom message. Value is base64 on the wire.
type CustomData struct {
	Value []byte `json:"value"`
}

// NewEnvelope wraps data in an envelope for method.
func NewEnvelope(method string, data []byte) Envelope {
	return Envelope{
		TID:       uuid.New().String(),
		BID:       uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Method:    method,
		Data:      CustomData{Value: data},
	}
}

// Cloud is the custom message service of the simulated SDK. Without a
// connection, sent messages are kept in an outbox.
type Cloud struct {
	sdk *SDK

	mu      sync.Mutex
	handler func([]byte)
	conn    *websocket.Conn
	done    chan struct{}
	outbox  [][]byte

	writeMu sync.Mutex

	cbs deliveries
}

func newCloud(s *SDK) *Cloud {
	return &Cloud{sdk: s}
}

// RegisterCustomServicesMessageHandler sets the handler for messages from
// the cloud, replacing any previous one.
func (c *Cloud) RegisterCustomServicesMessageHandler(h func(data []byte)) edge.ErrorCode {
	if h == nil {
		return edge.ErrorInvalidArgument
	}
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
	return edge.Ok
}

// SendCustomEventsMessage sends data to the cloud. The SDK must be
// initialized and data must fit in MaxCustomMessageSize.
func (c *Cloud) SendCustomEventsMessage(data []byte) edge.ErrorCode {
	if !c.sdk.Initialized() {
		return edge.ErrorInvalidOperation
	}
	if len(data) > MaxCustomMessageSize {
		return edge.ErrorParamOutOfRange
	}

	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.outbox = append(c.outbox, append([]byte(nil), data...))
		c.mu.Unlock()
		return edge.Ok
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	err := conn.WriteJSON(NewEnvelope(MethodFromDevice, data))
	c.writeMu.Unlock()
	if err != nil {
		c.sdk.Logger().Warn("send custom message failed", "error", err)
		return edge.ErrorSendPackFailure
	}
	return edge.Ok
}

// Outbox returns the messages sent while no cloud was connected.
func (c *Cloud) Outbox() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.outbox...)
}

// Deliver hands data to the registered handler as if it came from the
// cloud. It reports whether a handler was registered.
func (c *Cloud) Deliver(data []byte) bool {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h == nil {
		return false
	}
	c.cbs.run(func() { h(data) })
	return true
}

func (c *Cloud) connect(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.done = done
	c.mu.Unlock()

	go c.readLoop(conn, done)
	return nil
}

func (c *Cloud) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	logger := c.sdk.Logger()
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !errors.Is(err, websocket.ErrCloseSent) {
				logger.Debug("cloud read loop ended", "error", err)
			}
			return
		}
		if env.Method != MethodToDevice {
			logger.Debug("ignoring cloud message", "method", env.Method)
			continue
		}
		c.Deliver(env.Data.Value)
	}
}

func (c *Cloud) disconnect() {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.conn, c.done = nil, nil
	c.mu.Unlock()
	if conn == nil {
		return
	}
	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	_ = conn.Close()
	// The read loop ends once the running handler returns.
	if !c.cbs.inside() {
		<-done
	}
}

// CloudServer is a minimal cloud endpoint speaking the envelope protocol.
// Messages from devices are queued on Events.
type CloudServer struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*websocket.Conn]*sync.Mutex
	events chan Envelope
	closed bool
}

// NewCloudServer creates a server buffering up to 64 device events.
func NewCloudServer(logger *slog.Logger) *CloudServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudServer{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns:  make(map[*websocket.Conn]*sync.Mutex),
		events: make(chan Envelope, 64),
	}
}

// Events returns device messages in arrival order.
func (s *CloudServer) Events() <-chan Envelope { return s.events }

// Clients returns the number of connected devices.
func (s *CloudServer) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *CloudServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[conn] = &sync.Mutex{}
	s.mu.Unlock()
	s.logger.Info("device connected", "remote", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		if env.Method != MethodFromDevice {
			continue
		}
		select {
		case s.events <- env:
		default:
			s.logger.Warn("event queue full, dropping message", "tid", env.TID)
		}
	}
}

// Send delivers data to every connected device. It returns the number of
// devices reached.
func (s *CloudServer) Send(data []byte) (int, error) {
	if len(data) > MaxCustomMessageSize {
		return 0, edge.ErrParamOutOfRange
	}
	env := NewEnvelope(MethodToDevice, data)
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	n := 0
	for conn, wmu := range s.conns {
		wmu.Lock()
		err := conn.WriteJSON(env)
		wmu.Unlock()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// Close disconnects every device.
func (s *CloudServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
	return nil
}
