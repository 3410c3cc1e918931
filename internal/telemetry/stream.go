// Package telemetry maintains the console's single websocket connection to
// the yard's sensor bridge and turns inbound JSON frames into an ordered
// session buffer of temperature/humidity samples.
package telemetry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State is the connection lifecycle. It only moves forward: once Closed,
// the stream never reconnects on its own.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Greeting is the literal text frame sent to the bridge once the socket opens.
const Greeting = "hello from yard console"

// Sample is one sensor reading. PointID is assigned locally in arrival
// order and is strictly increasing regardless of the reported time field.
type Sample struct {
	Time        float64
	Temperature float64
	Humidity    float64
	PointID     int64
}

// frame is the bridge's wire shape. Every field is optional; temperature
// has a legacy alias.
type frame struct {
	Time        *float64 `json:"time"`
	Temperature *float64 `json:"temperature"`
	Temp        *float64 `json:"temp"`
	Humidity    *float64 `json:"humidity"`
}

// Stream owns one socket for the lifetime of a console session.
type Stream struct {
	url       string
	bufferCap int
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	buffer      []Sample
	nextPointID int64

	samples chan Sample
	states  chan State
	done    chan struct{}
	closeFn sync.Once
	conn    *websocket.Conn
}

// NewStream prepares a stream in the Connecting state. Nothing is dialed
// until Start.
func NewStream(url string, bufferCap int, logger *zap.Logger) *Stream {
	if bufferCap <= 0 {
		bufferCap = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{
		url:       url,
		bufferCap: bufferCap,
		logger:    logger,
		state:     StateConnecting,
		samples:   make(chan Sample, 128),
		states:    make(chan State, 4),
		done:      make(chan struct{}),
	}
}

// Samples delivers accepted readings in arrival order. The channel is
// closed when the stream reaches Closed.
func (s *Stream) Samples() <-chan Sample {
	return s.samples
}

// States delivers lifecycle transitions (Open, then Closed at most once).
func (s *Stream) States() <-chan State {
	return s.states
}

// State reports the current connection state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot copies the session buffer.
func (s *Stream) Snapshot() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sample, len(s.buffer))
	copy(out, s.buffer)
	return out
}

// Len reports the number of buffered samples.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}

// Start dials the bridge, sends the handshake greeting, and reads frames
// until the socket errors, the peer closes, or Close is called. It blocks;
// run it in a goroutine. The samples channel is closed on return.
func (s *Stream) Start(ctx context.Context) error {
	defer close(s.samples)
	defer s.setState(StateClosed)

	select {
	case <-s.done:
		return nil
	default:
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.logger.Debug("sensor bridge dial failed", zap.String("url", s.url), zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(Greeting)); err != nil {
		s.logger.Debug("handshake send failed", zap.Error(err))
		return err
	}
	s.setState(StateOpen)

	for {
		select {
		case <-s.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			s.logger.Debug("sensor bridge read ended", zap.Error(err))
			return err
		}

		sample, ok := s.ingest(raw)
		if !ok {
			continue
		}
		select {
		case s.samples <- sample:
		case <-s.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close tears the socket down deterministically. Safe to call more than
// once and before Start.
func (s *Stream) Close() {
	s.closeFn.Do(func() {
		close(s.done)
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		s.setState(StateClosed)
	})
}

// ingest applies the field-resolution policy and appends to the buffer.
// Unparseable frames are dropped without touching the buffer; that is
// policy, not an error.
func (s *Stream) ingest(raw []byte) (Sample, bool) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		s.logger.Debug("dropped unparseable sensor frame", zap.ByteString("frame", raw), zap.Error(err))
		return Sample{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sample := Sample{PointID: s.nextPointID}
	s.nextPointID++

	switch {
	case f.Time != nil:
		sample.Time = *f.Time
	default:
		sample.Time = float64(len(s.buffer))
	}
	switch {
	case f.Temperature != nil:
		sample.Temperature = *f.Temperature
	case f.Temp != nil:
		sample.Temperature = *f.Temp
	}
	if f.Humidity != nil {
		sample.Humidity = *f.Humidity
	}

	s.buffer = append(s.buffer, sample)
	if len(s.buffer) > s.bufferCap {
		s.buffer = s.buffer[len(s.buffer)-s.bufferCap:]
	}
	return sample, true
}

func (s *Stream) setState(next State) {
	s.mu.Lock()
	if s.state == StateClosed && next != StateClosed {
		s.mu.Unlock()
		return
	}
	changed := s.state != next
	s.state = next
	s.mu.Unlock()

	if !changed {
		return
	}
	select {
	case s.states <- next:
	default:
	}
}
