package net

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"sync"
	"time"

	"github.com/creaturesim/server/internal/bridge/network"
	"github.com/creaturesim/server/internal/core/vec"
	"github.com/creaturesim/server/internal/net/packet"
	"go.uber.org/zap"
)

// ClientOptions configures a Client.
type ClientOptions struct {
	Addr            string
	Name            string
	Secret          string
	DialTimeout     time.Duration
	ApprovalTimeout time.Duration
	InSize          int
	OutSize         int
}

// ChatLine is one chat message received from the server.
type ChatLine struct {
	From string
	Text string
}

// Client connects to a server, passes approval and then exchanges packets
// through a Session. Poll, Chat, SendInput and Disconnect run on the game
// loop; Status may be called from anywhere.
type Client struct {
	opts ClientOptions

	mu      sync.Mutex
	state   network.State
	lastErr network.Error
	owner   uint64

	sess *Session
	log  *zap.Logger
}

func NewClient(opts ClientOptions, log *zap.Logger) *Client {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.ApprovalTimeout <= 0 {
		opts.ApprovalTimeout = 5 * time.Second
	}
	if opts.InSize <= 0 {
		opts.InSize = 128
	}
	if opts.OutSize <= 0 {
		opts.OutSize = 128
	}
	return &Client{opts: opts, log: log}
}

func (c *Client) set(st network.State, e network.Error) {
	c.mu.Lock()
	c.state = st
	c.lastErr = e
	c.mu.Unlock()
}

// Owner returns the owner ID the server assigned on approval.
func (c *Client) Owner() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner
}

// Connect dials the server and runs the approval handshake. It returns
// ErrServerFull, ErrBadApproval, ErrRejected or ErrTimeout (wrapped) when
// the server turns the client away.
func (c *Client) Connect(ctx context.Context) error {
	c.set(network.StateConnecting, network.ErrorNone)

	d := net.Dialer{Timeout: c.opts.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.opts.Addr)
	if err != nil {
		c.set(network.StateDisconnected, network.ErrorConnectFailed)
		return fmt.Errorf("dial %s: %w", c.opts.Addr, err)
	}

	deadline := time.Now().Add(c.opts.ApprovalTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	conn.SetDeadline(deadline)

	owner, cipher, err := c.handshake(conn)
	if err != nil {
		conn.Close()
		c.set(network.StateDisconnected, classify(err))
		return err
	}
	conn.SetDeadline(time.Time{})

	sess := NewSession(conn, owner, c.opts.InSize, c.opts.OutSize, 0, c.log)
	sess.SetState(packet.StateApproved)
	sess.Name = c.opts.Name
	sess.run(cipher)

	c.mu.Lock()
	c.sess = sess
	c.owner = owner
	c.state = network.StateConnected
	c.lastErr = network.ErrorNone
	c.mu.Unlock()

	go c.watch(sess)
	c.log.Info("connected", zap.String("addr", c.opts.Addr), zap.Uint64("owner", owner))
	return nil
}

func (c *Client) handshake(conn net.Conn) (uint64, *Cipher, error) {
	var hello [helloSize]byte
	if _, err := io.ReadFull(conn, hello[:]); err != nil {
		return 0, nil, fmt.Errorf("read hello: %w", err)
	}
	if binary.LittleEndian.Uint16(hello[0:2]) != helloSize || hello[2] != packet.S_OPCODE_HELLO {
		return 0, nil, fmt.Errorf("%w: malformed hello", ErrRejected)
	}
	seed := binary.LittleEndian.Uint32(hello[3:7])
	if proto := binary.LittleEndian.Uint16(hello[7:9]); proto != packet.ProtocolVersion {
		return 0, nil, fmt.Errorf("%w: server protocol %d, client %d", ErrRejected, proto, packet.ProtocolVersion)
	}

	cipher, err := NewCipher(seed, false)
	if err != nil {
		return 0, nil, err
	}
	c.set(network.StateApproving, network.ErrorNone)

	w := packet.NewWriterWithOpcode(packet.C_OPCODE_APPROVAL)
	w.WriteH(packet.ProtocolVersion)
	w.WriteS(c.opts.Secret)
	w.WriteS(c.opts.Name)
	if err := WriteFrame(conn, cipher.Encrypt(w.Bytes())); err != nil {
		return 0, nil, err
	}

	payload, err := ReadFrame(conn)
	if err != nil {
		return 0, nil, fmt.Errorf("await approval: %w", err)
	}
	r := packet.NewReader(cipher.Decrypt(payload))
	switch r.Opcode() {
	case packet.S_OPCODE_APPROVED:
		return r.ReadQ(), cipher, nil
	case packet.S_OPCODE_DISCONNECT:
		reason := r.ReadS()
		return 0, nil, fmt.Errorf("approval: %w", reasonError(reason))
	default:
		return 0, nil, fmt.Errorf("%w: unexpected opcode 0x%02x", ErrRejected, r.Opcode())
	}
}

// classify maps a connect error to the bridge's error code.
func classify(err error) network.Error {
	var ne net.Error
	switch {
	case errors.As(err, &ne) && ne.Timeout():
		return network.ErrorTimeout
	case errors.Is(err, ErrTimeout):
		return network.ErrorTimeout
	case errors.Is(err, ErrServerFull):
		return network.ErrorServerFull
	case errors.Is(err, ErrRejected), errors.Is(err, ErrBadApproval):
		return network.ErrorRejected
	default:
		return network.ErrorConnectFailed
	}
}

func (c *Client) watch(sess *Session) {
	<-sess.Done()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == sess && c.state == network.StateConnected {
		c.state = network.StateDisconnected
		c.lastErr = network.ErrorDisconnected
	}
}

// Status reports the connection state. Implements network.Transport.
func (c *Client) Status() network.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := network.Status{Role: network.RoleClient, State: c.state, Error: c.lastErr}
	if c.state == network.StateConnected {
		st.Connections = 1
	}
	return st
}

func (c *Client) session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil || c.sess.IsClosed() || c.state != network.StateConnected {
		return nil
	}
	return c.sess
}

// Poll drains received packets and returns the chat lines among them. A
// server disconnect ends the session and records its reason.
func (c *Client) Poll() []ChatLine {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return nil
	}
	var lines []ChatLine
	for {
		select {
		case data := <-sess.InQueue:
			r := packet.NewReader(data)
			switch r.Opcode() {
			case packet.S_OPCODE_CHAT:
				from := r.ReadS()
				lines = append(lines, ChatLine{From: from, Text: r.ReadS()})
			case packet.S_OPCODE_DISCONNECT:
				reason := r.ReadS()
				code := network.ErrorRejected
				if errors.Is(reasonError(reason), ErrServerFull) {
					code = network.ErrorServerFull
				}
				c.log.Info("disconnected by server", zap.String("reason", reason))
				c.set(network.StateDisconnected, code)
				sess.Close()
				return lines
			}
		default:
			return lines
		}
	}
}

// Chat sends a chat line. The server attaches the sender's name, so from is
// ignored. Implements network.Transport.
func (c *Client) Chat(_ string, text string) error {
	sess := c.session()
	if sess == nil {
		return ErrNotConnected
	}
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_CHAT)
	w.WriteS(text)
	sess.Send(w.Bytes())
	sess.FlushOutput()
	return nil
}

// SendInput sends one input frame. Stick axes are clamped to [-1, 1].
func (c *Client) SendInput(tick uint32, move vec.Vec2, jump, ability bool) error {
	sess := c.session()
	if sess == nil {
		return ErrNotConnected
	}
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_INPUT)
	w.WriteDU(tick)
	w.WriteH(uint16(EncodeAxis(move.X)))
	w.WriteH(uint16(EncodeAxis(move.Y)))
	var buttons byte
	if jump {
		buttons |= packet.ButtonJump
	}
	if ability {
		buttons |= packet.ButtonAbility
	}
	w.WriteC(buttons)
	sess.Send(w.Bytes())
	sess.FlushOutput()
	return nil
}

// Disconnect says goodbye and closes the connection. Implements
// network.Transport; owner and reason are not used on the client side.
func (c *Client) Disconnect(uint64, string) error {
	sess := c.session()
	if sess == nil {
		return ErrNotConnected
	}
	sess.Send([]byte{packet.C_OPCODE_QUIT})
	sess.CloseAfterFlush()
	c.set(network.StateDisconnected, network.ErrorNone)
	return nil
}

// EncodeAxis maps a stick axis in [-1, 1] to the wire's int16.
func EncodeAxis(v float64) int16 {
	return int16(math.Round(math.Max(-1, math.Min(1, v)) * math.MaxInt16))
}

// DecodeAxis is the inverse of EncodeAxis.
func DecodeAxis(v int16) float64 {
	return math.Max(-1, float64(v)/math.MaxInt16)
}
