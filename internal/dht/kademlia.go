package dht

import (
	"context"
	"net/netip"
	"sync"

	"github.com/apsisnet/apsis/eris"
)

// Table is an in-memory provider-record store: for each block ID, the
// addresses that have announced serving it. It satisfies Lookup and is
// suitable for single-node operation, tests, and as the seed for a real
// swarm's local view of get_peers/announce_peer state.
type Table struct {
	self eris.PeerID

	mu        sync.RWMutex
	providers map[eris.PeerID][]netip.AddrPort
}

// NewTable creates an empty provider table for the local node identified
// by self.
func NewTable(self eris.PeerID) *Table {
	return &Table{
		self:      self,
		providers: make(map[eris.PeerID][]netip.AddrPort),
	}
}

// GetPeers implements Lookup. It yields a single batch of the addresses
// announced as providing id, if any, then closes the channel.
func (t *Table) GetPeers(ctx context.Context, id eris.PeerID) (<-chan []netip.AddrPort, error) {
	ch := make(chan []netip.AddrPort, 1)

	t.mu.RLock()
	addrs := append([]netip.AddrPort(nil), t.providers[id]...)
	t.mu.RUnlock()

	if len(addrs) > 0 {
		select {
		case ch <- addrs:
		case <-ctx.Done():
			close(ch)
			return ch, ctx.Err()
		}
	}
	close(ch)
	return ch, nil
}

// AnnouncePeer implements Lookup. It records addr as a provider of id.
func (t *Table) AnnouncePeer(ctx context.Context, id eris.PeerID, addr netip.AddrPort) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range t.providers[id] {
		if a == addr {
			return nil
		}
	}
	t.providers[id] = append(t.providers[id], addr)
	return nil
}
