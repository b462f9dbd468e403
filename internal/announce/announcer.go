package announce

import (
	"context"
	"net/netip"

	"github.com/sirupsen/logrus"

	"github.com/apsisnet/apsis/eris"
	"github.com/apsisnet/apsis/internal/dht"
)

// Announcer publishes locally written blocks to the DHT as detached,
// tracked background work. Failures are logged and never fail the write
// that triggered them.
type Announcer struct {
	lookup  dht.Lookup
	tracker *Tracker
	self    netip.AddrPort
	log     *logrus.Entry
}

// New creates an Announcer that advertises self as the address serving
// announced blocks.
func New(lookup dht.Lookup, tracker *Tracker, self netip.AddrPort, log *logrus.Entry) *Announcer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Announcer{lookup: lookup, tracker: tracker, self: self, log: log.WithField("component", "announce")}
}

// Announce spawns a background AnnouncePeer call for ref's peer ID. It
// returns immediately; the background task's failure is logged, not
// returned.
func (a *Announcer) Announce(ref eris.Reference) {
	id := ref.PeerID()
	err := a.tracker.Spawn(func() {
		if err := a.lookup.AnnouncePeer(context.Background(), id, a.self); err != nil {
			a.log.WithField("reference", ref).WithError(err).Warn("announce failed")
		}
	})
	if err != nil {
		a.log.WithField("reference", ref).WithError(err).Debug("announce dropped after shutdown")
	}
}
