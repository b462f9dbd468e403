package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/apsisnet/apsis/eris"
)

// resourceToName handles POST /uri-res/R2N.
func (s *Server) resourceToName(w http.ResponseWriter, r *http.Request) {
	payload, err := s.readPayload(r)
	if err != nil {
		if errors.Is(err, errUnsupportedMediaType) {
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	var secret [eris.ConvergenceSecretSize]byte
	if _, err := rand.Read(secret[:]); err != nil {
		s.log.WithError(err).Error("reading convergence secret")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	blockSize := s.sizer.BlockSize(len(payload))
	rc, err := eris.Encode(r.Context(), bytes.NewReader(payload), secret, blockSize, s.writeBlock)
	if err != nil {
		s.log.WithError(err).Warn("encode failed")
		http.Error(w, "encode failed", http.StatusUnprocessableEntity)
		return
	}

	urn, err := rc.URN()
	if err != nil {
		s.log.WithError(err).Error("capability URN encoding failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	io.WriteString(w, urn)
}

var errUnsupportedMediaType = errors.New("unsupported content type")

// readPayload extracts the uploaded bytes from an application/json or
// multipart/form-data request body.
func (s *Server) readPayload(r *http.Request) ([]byte, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, errUnsupportedMediaType
	}

	switch mediaType {
	case "application/json":
		return io.ReadAll(r.Body)

	case "multipart/form-data":
		boundary, ok := params["boundary"]
		if !ok {
			return nil, errUnsupportedMediaType
		}
		mr := multipart.NewReader(r.Body, boundary)
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		defer part.Close()
		return io.ReadAll(part)

	default:
		return nil, errUnsupportedMediaType
	}
}

// nameToResource handles GET /uri-res/N2R.
func (s *Server) nameToResource(w http.ResponseWriter, r *http.Request) {
	urn := rawURN(r)

	if rc, err := eris.ParseReadCapabilityURN(urn); err == nil {
		s.serveCapability(w, r, rc)
		return
	}

	if ref, err := eris.ReferenceFromBareURN(urn); err == nil {
		s.serveBareReference(w, r, ref)
		return
	}

	http.Error(w, "malformed URN", http.StatusBadRequest)
}

// rawURN recovers the URN from the request's query string. The query
// string as a whole is the URN, not a key=value pair.
func rawURN(r *http.Request) string {
	raw := r.URL.RawQuery
	if unescaped, err := url.QueryUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}

func (s *Server) serveCapability(w http.ResponseWriter, r *http.Request, rc eris.ReadCapability) {
	var buf bytes.Buffer
	sink := func(ctx context.Context, p []byte) error {
		_, err := buf.Write(p)
		return err
	}

	if _, err := eris.Decode(r.Context(), rc, s.resolve, sink); err != nil {
		s.log.WithError(err).Debug("decode failed")
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "application/json"):
		if !json.Valid(buf.Bytes()) {
			http.Error(w, "stored content is not valid JSON", http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	case strings.Contains(accept, "application/octet-stream"):
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	default:
		http.Error(w, "unacceptable media type", http.StatusNotFound)
	}
}

func (s *Server) serveBareReference(w http.ResponseWriter, r *http.Request, ref eris.Reference) {
	block, err := s.resolve(r.Context(), ref)
	if err != nil {
		s.log.WithError(err).Debug("bare reference fetch failed")
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(block)
}
