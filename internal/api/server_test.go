package api

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apsisnet/apsis/eris"
	"github.com/apsisnet/apsis/internal/policy"
	"github.com/apsisnet/apsis/internal/store"
)

const testToken = "test-token"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := store.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	resolve := func(ctx context.Context, ref eris.Reference) ([]byte, error) {
		return s.ReadBlock(ref)
	}
	return New(s, resolve, nil, policy.SizeThreshold, testToken, nil)
}

func TestR2NThenN2RJSONRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	body := `{"hello":"world"}`
	req := httptest.NewRequest(http.MethodPost, "/uri-res/R2N", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", testToken)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("R2N status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	urn := rec.Body.String()

	getReq := httptest.NewRequest(http.MethodGet, "/uri-res/N2R?"+urn, nil)
	getReq.Header.Set("Accept", "application/json")
	getRec := httptest.NewRecorder()
	srv.ServeHTTP(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("N2R status = %d, want 200, body=%s", getRec.Code, getRec.Body.String())
	}
	if getRec.Body.String() != body {
		t.Fatalf("N2R body = %q, want %q", getRec.Body.String(), body)
	}
}

func TestR2NMultipartUpload(t *testing.T) {
	srv := newTestServer(t)

	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "upload.bin")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	content := "binary payload contents"
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/uri-res/R2N", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", testToken)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("R2N status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	urn := rec.Body.String()

	getReq := httptest.NewRequest(http.MethodGet, "/uri-res/N2R?"+urn, nil)
	getReq.Header.Set("Accept", "application/octet-stream")
	getRec := httptest.NewRecorder()
	srv.ServeHTTP(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("N2R status = %d, want 200", getRec.Code)
	}
	if getRec.Body.String() != content {
		t.Fatalf("N2R body = %q, want %q", getRec.Body.String(), content)
	}
}

func TestR2NRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/uri-res/R2N", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("R2N without auth = %d, want 401", rec.Code)
	}
}

func TestR2NUnsupportedMediaType(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/uri-res/R2N", strings.NewReader("plain text"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", testToken)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("R2N with text/plain = %d, want 415", rec.Code)
	}
}

func TestN2RMalformedURN(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/uri-res/N2R?not-a-urn", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("N2R with malformed URN = %d, want 400", rec.Code)
	}
}

func TestN2RNotFound(t *testing.T) {
	srv := newTestServer(t)

	var ref eris.Reference
	ref[0] = 0x42
	urn := ref.BareURN()

	req := httptest.NewRequest(http.MethodGet, "/uri-res/N2R?"+urn, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("N2R for unknown bare reference = %d, want 404", rec.Code)
	}
}
