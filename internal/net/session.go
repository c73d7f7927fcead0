package net

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creaturesim/server/internal/net/packet"
	"go.uber.org/zap"
)

// helloSize is the plaintext hello frame: [2B len][opcode][4B seed][2B protocol].
const helloSize = 9

// Session represents a single connection. Network I/O runs in dedicated
// goroutines; game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn net.Conn

	cipher *Cipher
	state  atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan []byte // game loop reads packets from here
	OutQueue chan []byte // writer goroutine reads from here

	IP   string
	Name string // display name, set on approval

	outBuf [][]byte // buffered packets, flushed by the output system (game loop only)

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	dropCh    chan struct{}
	dropOnce  sync.Once

	// Per-second packet rate limiter (readLoop goroutine only, no lock needed)
	pktPerSec  int   // max packets/sec (0 = unlimited)
	pktCount   int   // packets received this second
	pktResetAt int64 // unix second of last counter reset

	writeTimeout time.Duration
	readTimeout  time.Duration // 0 = none

	// Opened is when the connection was accepted.
	Opened time.Time

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, inSize, outSize, pktPerSec int, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		InQueue:      make(chan []byte, inSize),
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		closeCh:      make(chan struct{}),
		dropCh:       make(chan struct{}),
		pktPerSec:    pktPerSec,
		writeTimeout: 10 * time.Second,
		Opened:       time.Now(),
		log:          log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateHandshake))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start sends the plaintext hello, initializes the server-side cipher and
// launches the reader and writer goroutines.
func (s *Session) Start() {
	seed := uint32(rand.Int31n(0x7ffffffe) + 1)

	buf := make([]byte, helloSize)
	binary.LittleEndian.PutUint16(buf[0:2], helloSize)
	buf[2] = packet.S_OPCODE_HELLO
	binary.LittleEndian.PutUint32(buf[3:7], seed)
	binary.LittleEndian.PutUint16(buf[7:9], packet.ProtocolVersion)

	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if _, err := s.conn.Write(buf); err != nil {
		s.log.Error("hello send failed", zap.Error(err))
		s.Close()
		return
	}

	c, err := NewCipher(seed, true)
	if err != nil {
		s.log.Error("cipher init failed", zap.Error(err))
		s.Close()
		return
	}
	s.run(c)
}

// run installs the cipher and starts the I/O goroutines.
func (s *Session) run(c *Cipher) {
	s.cipher = c
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a packet for sending. The packet is not written until
// FlushOutput is called by the output system.
// Called only from the game loop goroutine.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, dropping slow connection")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Kick sends S_OPCODE_DISCONNECT with reason and closes the session once
// everything queued before it has been written.
func (s *Session) Kick(reason string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_DISCONNECT)
	w.WriteS(reason)
	s.Send(w.Bytes())
	s.CloseAfterFlush()
}

// CloseAfterFlush flushes buffered output and closes the session once the
// writer has sent everything queued.
func (s *Session) CloseAfterFlush() {
	s.FlushOutput()
	s.SetState(packet.StateDisconnecting)
	s.dropOnce.Do(func() { close(s.dropCh) })
}

// Close shuts down the session immediately.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// readLoop reads frames, decrypts them, and pushes them onto InQueue for
// the game loop to consume.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		if s.readTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read failed", zap.Error(err))
			}
			return
		}

		decrypted := s.cipher.Decrypt(payload)

		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("packet rate exceeded, disconnecting", zap.Int("pps", s.pktCount))
				return
			}
		}

		// Input frames are ordered per client; block rather than drop.
		select {
		case s.InQueue <- decrypted:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop encrypts packets from OutQueue and writes them as frames. After
// Kick it writes whatever is still queued and closes.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOnePacket(data) {
				return
			}
		case <-s.dropCh:
			for {
				select {
				case data := <-s.OutQueue:
					if !s.writeOnePacket(data) {
						return
					}
				default:
					return
				}
			}
		case <-s.closeCh:
			return
		}
	}
}

// writeOnePacket encrypts and writes a single packet. Returns false on
// write failure.
func (s *Session) writeOnePacket(data []byte) bool {
	if len(data) > 0 {
		s.log.Debug("TX",
			zap.String("op", fmt.Sprintf("0x%02X(%d)", data[0], data[0])),
			zap.Int("len", len(data)),
		)
	}

	encrypted := make([]byte, len(data))
	copy(encrypted, data)
	s.cipher.Encrypt(encrypted)

	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := WriteFrame(s.conn, encrypted); err != nil {
		if !s.closed.Load() {
			s.log.Debug("write failed", zap.Error(err))
		}
		return false
	}
	return true
}
