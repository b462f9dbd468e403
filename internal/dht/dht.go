// Package dht models the distributed hash table as a narrow black-box
// collaborator: something that can be asked for peers providing a given
// block, and told that the local node now provides one. No DHT wire
// protocol is implemented here; Table is an in-memory seed implementation
// for single-node operation and tests, and Lookup is the seam a real
// mainline/Kademlia client would be wired in behind.
package dht

import (
	"context"
	"net/netip"

	"github.com/apsisnet/apsis/eris"
)

// Lookup is the DHT surface the resolver and announcer depend on.
type Lookup interface {
	// GetPeers yields zero or more batches of candidate providers for id,
	// asynchronously, until the DHT has exhausted its search or ctx is
	// canceled. The channel is always closed.
	GetPeers(ctx context.Context, id eris.PeerID) (<-chan []netip.AddrPort, error)

	// AnnouncePeer records that addr provides the block named by id.
	AnnouncePeer(ctx context.Context, id eris.PeerID, addr netip.AddrPort) error
}
