// Package protocol is the wire format between a field session client and
// its worker: JSON control messages in, binary render frames out.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// MsgType names a control message.
type MsgType string

const (
	TypeInit           MsgType = "init"
	TypeResize         MsgType = "resize"
	TypeUpdateMouse    MsgType = "updateMouse"
	TypeUpdateSettings MsgType = "updateSettings"
	TypeBufferBack     MsgType = "bufferBack"
	TypeRender         MsgType = "render"
)

const (
	// Binary frame types
	FrameRender byte = 0x01

	// Version for compatibility checking
	Version uint16 = 1

	HeaderSize   = 8 // 2 + 1 + 1 + 4
	MaxFrameSize = 4 * 1024 * 1024
)

var (
	ErrUnknownMessage = errors.New("protocol: unknown message type")
	ErrShortFrame     = errors.New("protocol: short frame")
)

// Envelope is the JSON shape of every control message.
type Envelope struct {
	Type    MsgType         `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is a decoded control payload.
type Message interface {
	Type() MsgType
}

type Init struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	IsMobile bool    `json:"isMobile"`
}

type Resize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type UpdateMouse struct {
	MousePos    Point `json:"mousePos"`
	IsMouseDown bool  `json:"isMouseDown"`
}

type UpdateSettings struct {
	PullStrength float64 `json:"pullStrength"`
	BaseColor    string  `json:"baseColor"` // #rgb, #rrggbb or #rrggbbaa
}

// BufferBack returns ownership of the last render buffer. It carries no data.
type BufferBack struct{}

func (Init) Type() MsgType           { return TypeInit }
func (Resize) Type() MsgType         { return TypeResize }
func (UpdateMouse) Type() MsgType    { return TypeUpdateMouse }
func (UpdateSettings) Type() MsgType { return TypeUpdateSettings }
func (BufferBack) Type() MsgType     { return TypeBufferBack }

// Decode parses one control message.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case TypeInit:
		return decodeAs[Init](env)
	case TypeResize:
		return decodeAs[Resize](env)
	case TypeUpdateMouse:
		return decodeAs[UpdateMouse](env)
	case TypeUpdateSettings:
		return decodeAs[UpdateSettings](env)
	case TypeBufferBack:
		return BufferBack{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
}

func decodeAs[T Message](env Envelope) (Message, error) {
	var msg T
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return msg, nil
}

// Encode wraps a payload in an envelope.
func Encode(msg Message) ([]byte, error) {
	env := Envelope{Type: msg.Type()}
	if _, ok := msg.(BufferBack); !ok {
		payload, err := json.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msg.Type(), err)
		}
		env.Payload = payload
	}
	return json.Marshal(env)
}

// Header frames a binary message.
type Header struct {
	Version    uint16
	Type       byte
	RecordSize byte
	Count      uint32
}

// AppendRender appends a render frame to dst: the header followed by the
// packed buffer as little-endian float32 values.
func AppendRender(dst []byte, buf *physics.Buffer) ([]byte, error) {
	data, err := buf.Data()
	if err != nil {
		return dst, err
	}
	size := HeaderSize + len(data)*4
	if size > MaxFrameSize {
		return dst, fmt.Errorf("frame too large: %d > %d", size, MaxFrameSize)
	}

	dst = binary.LittleEndian.AppendUint16(dst, Version)
	dst = append(dst, FrameRender, physics.RecordSize)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(data)/physics.RecordSize))
	for _, v := range data {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst, nil
}

// ReadRender decodes a render frame into a buffer owned by the caller.
func ReadRender(frame []byte) (*physics.Buffer, error) {
	if len(frame) < HeaderSize {
		return nil, ErrShortFrame
	}
	h := Header{
		Version:    binary.LittleEndian.Uint16(frame[0:2]),
		Type:       frame[2],
		RecordSize: frame[3],
		Count:      binary.LittleEndian.Uint32(frame[4:8]),
	}
	if h.Version != Version {
		return nil, fmt.Errorf("version mismatch: got %d, want %d", h.Version, Version)
	}
	if h.Type != FrameRender {
		return nil, fmt.Errorf("%w: frame type 0x%02x", ErrUnknownMessage, h.Type)
	}
	if h.RecordSize != physics.RecordSize {
		return nil, fmt.Errorf("record size mismatch: got %d, want %d", h.RecordSize, physics.RecordSize)
	}

	n := int(h.Count) * physics.RecordSize
	if len(frame) < HeaderSize+n*4 {
		return nil, fmt.Errorf("%w: %d records need %d bytes, got %d", ErrShortFrame, h.Count, HeaderSize+n*4, len(frame))
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(frame[HeaderSize+i*4:]))
	}
	return physics.WrapBuffer(data)
}

// ParseColor parses a hex colour. Alpha defaults to 1.
func ParseColor(s string) (physics.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return physics.Color{}, fmt.Errorf("invalid colour %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return physics.Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	a := float32(1)
	if len(hex) == 8 {
		a = float32(v&0xff) / 255
		v >>= 8
	}
	return physics.Color{
		R: float32(v >> 16 & 0xff),
		G: float32(v >> 8 & 0xff),
		B: float32(v & 0xff),
		A: a,
	}, nil
}
