package store

import (
	"testing"

	"github.com/apsisnet/apsis/eris"
)

func testRef(b byte) eris.Reference {
	var r eris.Reference
	r[0] = b
	return r
}

func TestWriteReadRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ref := testRef(1)
	block := []byte("block contents")

	n, err := s.WriteBlock(ref, block)
	if err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if n != len(block) {
		t.Fatalf("WriteBlock returned %d, want %d", n, len(block))
	}

	got, err := s.ReadBlock(ref)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if string(got) != string(block) {
		t.Fatalf("ReadBlock = %q, want %q", got, block)
	}
}

func TestReadBlockNotFound(t *testing.T) {
	s, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.ReadBlock(testRef(9)); err != ErrNotFound {
		t.Fatalf("ReadBlock = %v, want ErrNotFound", err)
	}
}

func TestWriteBlockIdempotent(t *testing.T) {
	s, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ref := testRef(2)
	block := []byte("idempotent")

	n1, err := s.WriteBlock(ref, block)
	if err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	n2, err := s.WriteBlock(ref, block)
	if err != nil {
		t.Fatalf("WriteBlock (second): %v", err)
	}
	if n1 != n2 {
		t.Fatalf("idempotent write lengths differ: %d vs %d", n1, n2)
	}

	has, err := s.Has(ref)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !has {
		t.Fatal("expected Has to report true after write")
	}
}
