// Package resolver composes the local block store and the DHT into a
// single eris.ResolveFunc: try local storage first, then ask the DHT for
// peers and fetch from them over HTTP, verifying every block's hash
// before trusting it.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"

	"github.com/sirupsen/logrus"

	"github.com/apsisnet/apsis/eris"
	"github.com/apsisnet/apsis/internal/dht"
	"github.com/apsisnet/apsis/internal/store"
)

// MaxPeerRetries bounds the number of get_peers rounds issued before a
// block is declared not found.
const MaxPeerRetries = 3

// ErrBlockNotFound is returned when neither the local store nor any peer
// serves the requested reference.
var ErrBlockNotFound = errors.New("resolver: block not found")

// Resolver fetches blocks by reference, preferring the local store and
// falling back to peers discovered via the DHT.
type Resolver struct {
	store  *store.Store
	lookup dht.Lookup
	client *http.Client
	log    *logrus.Entry
}

// New creates a Resolver. client may be nil, in which case
// http.DefaultClient is used; callers wanting TLS or an allow-list on
// peer fetches should supply their own.
func New(s *store.Store, lookup dht.Lookup, client *http.Client, log *logrus.Entry) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Resolver{store: s, lookup: lookup, client: client, log: log.WithField("component", "resolver")}
}

// Resolve implements eris.ResolveFunc.
func (r *Resolver) Resolve(ctx context.Context, ref eris.Reference) ([]byte, error) {
	local, err := r.store.ReadBlock(ref)
	if err == nil {
		return local, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return r.fetchFromPeers(ctx, ref)
}

// fetchFromPeers implements the fetch-and-verify loop: up to
// MaxPeerRetries rounds of DHT lookup, each round trying every returned
// peer in turn and accepting the first response whose unkeyed
// Blake2b-256 hash matches ref.
func (r *Resolver) fetchFromPeers(ctx context.Context, ref eris.Reference) ([]byte, error) {
	id := ref.PeerID()

	for round := 0; round < MaxPeerRetries; round++ {
		batches, err := r.lookup.GetPeers(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolver: get_peers: %w", err)
		}

		for batch := range batches {
			for _, peer := range batch {
				block, ok := r.tryPeer(ctx, peer, ref)
				if ok {
					return block, nil
				}
			}
		}
	}

	return nil, ErrBlockNotFound
}

// tryPeer issues a single N2R GET against peer for ref's bare reference
// URN and reports whether the response verifies against ref.
func (r *Resolver) tryPeer(ctx context.Context, peer netip.AddrPort, ref eris.Reference) ([]byte, bool) {
	url := fmt.Sprintf("http://%s/uri-res/N2R?%s", peer, ref.BareURN())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.WithField("peer", peer).WithError(err).Debug("peer fetch failed")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}

	if eris.Blake2b256(body, nil) != [32]byte(ref) {
		r.log.WithField("peer", peer).Warn("peer served a block that failed hash verification")
		return nil, false
	}
	return body, true
}
