package peer

import (
	"sync"

	"github.com/canitude/libaltcoin-network/codes"
	"github.com/canitude/libaltcoin-network/netmsg"
	"github.com/canitude/libaltcoin-network/subscribe"
)

// MessageSubscriber fans incoming messages out to protocol handlers keyed
// by wire command, and stops every per-command subscriber together when
// the owning channel stops. It generalizes libbitcoin's compile-time
// MessageSubscriber<Message...> template into one runtime map, since Go
// generics cannot parameterize a struct over a type list the way the C++
// variadic template does.
type MessageSubscriber struct {
	mu      sync.Mutex
	byCmd   map[string]*subscribe.Subscriber[netmsg.Message]
	stopped bool
}

// NewMessageSubscriber returns an empty, live subscriber registry.
func NewMessageSubscriber() *MessageSubscriber {
	return &MessageSubscriber{byCmd: make(map[string]*subscribe.Subscriber[netmsg.Message])}
}

func (m *MessageSubscriber) subscriberFor(command string) *subscribe.Subscriber[netmsg.Message] {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.byCmd[command]
	if !ok {
		sub = subscribe.NewSubscriber[netmsg.Message]()
		if m.stopped {
			sub.Stop(codes.New(codes.ErrChannelStopped, ""))
		}
		m.byCmd[command] = sub
	}
	return sub
}

// Subscribe registers handler for the given wire command.
func (m *MessageSubscriber) Subscribe(command string, handler subscribe.Handler[netmsg.Message]) {
	m.subscriberFor(command).Subscribe(handler)
}

// Relay dispatches msg to every handler subscribed to its command.
func (m *MessageSubscriber) Relay(msg netmsg.Message, codec netmsg.Codec) {
	m.subscriberFor(codec.Command(msg)).Relay(msg)
}

// Stop terminates every per-command subscriber with err.
func (m *MessageSubscriber) Stop(err error) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	subs := make([]*subscribe.Subscriber[netmsg.Message], 0, len(m.byCmd))
	for _, s := range m.byCmd {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		s.Stop(err)
	}
}
