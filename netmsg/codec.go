// Package netmsg defines the wire message trait this core depends on and
// ships one concrete implementation over btcsuite/btcd/wire. The session
// and protocol packages only ever import the Message/Codec interfaces
// defined here, never wire directly, so a host application can swap in an
// entirely different serialization without touching this repository.
package netmsg

import (
	"io"

	"github.com/btcsuite/btcd/wire"
)

// Message is anything this core can send or receive on a channel. It is
// satisfied directly by every wire.Message implementation (wire.MsgVersion,
// wire.MsgPing, ...), so the default Codec below needs no adapter layer.
type Message = wire.Message

// Codec reads and writes framed Messages on a byte stream. The default
// WireCodec below implements it over the Bitcoin wire protocol; a host
// embedding this core for a different network only needs to supply its own
// Codec.
type Codec interface {
	// ReadMessage blocks until a complete message has been read from r,
	// or returns an error (including io.EOF on orderly peer close).
	ReadMessage(r io.Reader) (Message, error)

	// WriteMessage serializes msg onto w in full before returning.
	WriteMessage(w io.Writer, msg Message) error

	// Command returns the wire command string for msg, used for
	// per-type subscriber dispatch without a type switch at every call
	// site.
	Command(msg Message) string
}

// WireCodec is the default Codec, implemented directly on top of
// btcsuite/btcd/wire's message framing.
type WireCodec struct {
	ProtocolVersion uint32
	Net             wire.BitcoinNet
}

// NewWireCodec returns a WireCodec bound to the given negotiated protocol
// version and network magic.
func NewWireCodec(protocolVersion uint32, net wire.BitcoinNet) *WireCodec {
	return &WireCodec{ProtocolVersion: protocolVersion, Net: net}
}

func (c *WireCodec) ReadMessage(r io.Reader) (Message, error) {
	msg, _, err := wire.ReadMessage(r, c.ProtocolVersion, c.Net)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *WireCodec) WriteMessage(w io.Writer, msg Message) error {
	return wire.WriteMessage(w, msg, c.ProtocolVersion, c.Net)
}

func (c *WireCodec) Command(msg Message) string {
	return msg.Command()
}

// Commands used throughout the protocol state machines, named as
// constants so callers never hand-type a wire string.
const (
	CmdVersion   = wire.CmdVersion
	CmdVerAck    = wire.CmdVerAck
	CmdPing      = wire.CmdPing
	CmdPong      = wire.CmdPong
	CmdAddr      = wire.CmdAddr
	CmdGetAddr   = wire.CmdGetAddr
	CmdReject    = wire.CmdReject
)
