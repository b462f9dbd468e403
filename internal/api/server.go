// Package api adapts encode/decode, the store, and the resolver onto the
// HTTP surface: POST /uri-res/R2N and GET /uri-res/N2R.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/apsisnet/apsis/eris"
	"github.com/apsisnet/apsis/internal/announce"
	"github.com/apsisnet/apsis/internal/policy"
	"github.com/apsisnet/apsis/internal/store"
)

// Server holds everything the HTTP handlers need: the block store for
// writes and local reads, a resolver for decode-time fetches, the
// announcer for fire-and-forget DHT publication, and the policy that
// chooses block sizes for uploads.
type Server struct {
	store     *store.Store
	resolve   eris.ResolveFunc
	announcer *announce.Announcer
	sizer     policy.BlockSizer
	authToken string
	log       *logrus.Entry

	router chi.Router
}

// New builds a Server and its routing table. resolve is typically
// (*resolver.Resolver).Resolve.
func New(s *store.Store, resolve eris.ResolveFunc, announcer *announce.Announcer, sizer policy.BlockSizer, authToken string, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	srv := &Server{
		store:     s,
		resolve:   resolve,
		announcer: announcer,
		sizer:     sizer,
		authToken: authToken,
		log:       log.WithField("component", "api"),
	}
	srv.router = srv.routes()
	return srv
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Route("/uri-res", func(r chi.Router) {
		r.With(authenticate(s.authToken)).Post("/R2N", s.resourceToName)
		r.Get("/N2R", s.nameToResource)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Info("request")
	})
}

// writeBlock implements eris.WriteBlockFunc: persist locally, then
// announce the block on the DHT in the background.
func (s *Server) writeBlock(ctx context.Context, ref eris.Reference, key eris.Key, block []byte) error {
	if _, err := s.store.WriteBlock(ref, block); err != nil {
		return err
	}
	if s.announcer != nil {
		s.announcer.Announce(ref)
	}
	return nil
}
