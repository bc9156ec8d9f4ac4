package electrum

import "sync"

// broadcaster is a minimal fan-out primitive: each Subscribe call gets its
// own buffered channel; Publish never blocks on a slow or abandoned
// subscriber, it just drops the value for that one channel.
type broadcaster[T any] struct {
	mu   sync.Mutex
	subs map[int]chan T
	next int
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subs: make(map[int]chan T)}
}

// Subscribe returns a channel of future published values and an unsubscribe
// function the caller must invoke when done listening.
func (b *broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan T, 16)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// AddressStatus is published when subscribed address activity changes.
type AddressStatus struct {
	Address    string
	HasHistory bool
}

// TransactionUpdate is published when the client learns (or revises) a
// tracked transaction's confirmation depth.
type TransactionUpdate struct {
	Txid          string
	Confirmations int64
	BlockHeight   *int64
}

// BalanceUpdate is published alongside AddressStatus when an address's
// balance changes.
type BalanceUpdate struct {
	Address     string
	ConfirmedSats int64
	UnconfirmedSats int64
}

type publishers struct {
	connectionState *broadcaster[ConnState]
	blockHeight     *broadcaster[uint32]
	addressStatus   *broadcaster[AddressStatus]
	transactionUpd  *broadcaster[TransactionUpdate]
	balanceUpdate   *broadcaster[BalanceUpdate]
}

func newPublishers() *publishers {
	return &publishers{
		connectionState: newBroadcaster[ConnState](),
		blockHeight:     newBroadcaster[uint32](),
		addressStatus:   newBroadcaster[AddressStatus](),
		transactionUpd:  newBroadcaster[TransactionUpdate](),
		balanceUpdate:   newBroadcaster[BalanceUpdate](),
	}
}

// SubscribeConnectionState streams connection state transitions.
func (c *Client) SubscribeConnectionState() (<-chan ConnState, func()) {
	return c.pub.connectionState.Subscribe()
}

// SubscribeBlockHeight streams new tip heights learned from headers.subscribe.
func (c *Client) SubscribeBlockHeight() (<-chan uint32, func()) {
	return c.pub.blockHeight.Subscribe()
}

// SubscribeAddressStatus streams has-history changes for subscribed addresses.
func (c *Client) SubscribeAddressStatus() (<-chan AddressStatus, func()) {
	return c.pub.addressStatus.Subscribe()
}

// SubscribeTransactionUpdates streams confirmation-depth changes for
// transactions touching subscribed addresses.
func (c *Client) SubscribeTransactionUpdates() (<-chan TransactionUpdate, func()) {
	return c.pub.transactionUpd.Subscribe()
}

// SubscribeBalanceUpdates streams balance changes for subscribed addresses.
func (c *Client) SubscribeBalanceUpdates() (<-chan BalanceUpdate, func()) {
	return c.pub.balanceUpdate.Subscribe()
}
