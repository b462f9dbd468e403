package resolver

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/apsisnet/apsis/eris"
	"github.com/apsisnet/apsis/internal/store"
)

func TestResolveLocalHit(t *testing.T) {
	s, err := store.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close()

	block := []byte("local block contents padded out")
	ref := eris.Reference(eris.Blake2b256(block, nil))
	if _, err := s.WriteBlock(ref, block); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	r := New(s, failingLookup{}, nil, nil)
	got, err := r.Resolve(context.Background(), ref)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(got) != string(block) {
		t.Fatalf("Resolve = %q, want %q", got, block)
	}
}

func TestResolvePeerFallback(t *testing.T) {
	block := []byte("served by a peer over http")
	ref := eris.Reference(eris.Blake2b256(block, nil))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !strings.HasPrefix(req.URL.RawQuery, "urn:") {
			t.Fatalf("expected bare reference URN in query, got %q", req.URL.RawQuery)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(block)
	}))
	defer srv.Close()

	s, err := store.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close()

	addr := mustAddrPort(t, srv.URL)
	r := New(s, staticLookup{addr: addr}, srv.Client(), nil)

	got, err := r.Resolve(context.Background(), ref)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(got) != string(block) {
		t.Fatalf("Resolve = %q, want %q", got, block)
	}
}

func TestResolveNotFound(t *testing.T) {
	s, err := store.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close()

	r := New(s, emptyLookup{}, nil, nil)
	var ref eris.Reference
	ref[0] = 1

	if _, err := r.Resolve(context.Background(), ref); err != ErrBlockNotFound {
		t.Fatalf("Resolve = %v, want ErrBlockNotFound", err)
	}
}

func mustAddrPort(t *testing.T, rawURL string) netip.AddrPort {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host:port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		t.Fatalf("parse addr: %v", err)
	}
	return netip.AddrPortFrom(addr, uint16(port))
}

// staticLookup always returns a single fixed peer address.
type staticLookup struct{ addr netip.AddrPort }

func (l staticLookup) GetPeers(ctx context.Context, id eris.PeerID) (<-chan []netip.AddrPort, error) {
	ch := make(chan []netip.AddrPort, 1)
	ch <- []netip.AddrPort{l.addr}
	close(ch)
	return ch, nil
}

func (l staticLookup) AnnouncePeer(ctx context.Context, id eris.PeerID, addr netip.AddrPort) error {
	return nil
}

// emptyLookup never yields any peers.
type emptyLookup struct{}

func (emptyLookup) GetPeers(ctx context.Context, id eris.PeerID) (<-chan []netip.AddrPort, error) {
	ch := make(chan []netip.AddrPort)
	close(ch)
	return ch, nil
}

func (emptyLookup) AnnouncePeer(ctx context.Context, id eris.PeerID, addr netip.AddrPort) error {
	return nil
}

// failingLookup would fail the test if ever consulted; used to assert
// that a local store hit never falls through to the DHT.
type failingLookup struct{}

func (failingLookup) GetPeers(ctx context.Context, id eris.PeerID) (<-chan []netip.AddrPort, error) {
	panic("GetPeers should not be called on a local store hit")
}

func (failingLookup) AnnouncePeer(ctx context.Context, id eris.PeerID, addr netip.AddrPort) error {
	panic("AnnouncePeer should not be called by the resolver")
}
