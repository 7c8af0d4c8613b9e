package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func mustEncode(t *testing.T, e Envelope) []byte {
	t.Helper()
	b, err := Encode(e)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	return b
}

func mustDecode(t *testing.T, b []byte) Envelope {
	t.Helper()
	e, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return e
}

func TestRoundTrip(t *testing.T) {
	cases := []Envelope{
		{ExpiresAt: 1, Version: "", Payload: nil},
		{ExpiresAt: 1_700_000_000_000, Version: "v1.2.3", Payload: []byte("hello")},
		{ExpiresAt: math.MaxInt64, Version: strings.Repeat("v", 0xFFFF), Payload: []byte{0, 1, 2}},
	}
	for _, tc := range cases {
		got := mustDecode(t, mustEncode(t, tc))
		if got.ExpiresAt != tc.ExpiresAt || got.Version != tc.Version || !bytes.Equal(got.Payload, tc.Payload) {
			t.Fatalf("mismatch: got=%+v want=%+v", got, tc)
		}
	}
}

func TestEmptyPayloadIsKept(t *testing.T) {
	got := mustDecode(t, mustEncode(t, Envelope{ExpiresAt: 5, Version: "v", Payload: []byte{}}))
	if got.Payload == nil || len(got.Payload) != 0 {
		t.Fatalf("expected empty non-nil payload, got %#v", got.Payload)
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	if _, err := Encode(Envelope{ExpiresAt: 0}); err == nil {
		t.Fatal("expected error for missing expiry")
	}
	if _, err := Encode(Envelope{ExpiresAt: -1}); err == nil {
		t.Fatal("expected error for negative expiry")
	}
	if _, err := Encode(Envelope{ExpiresAt: 1, Version: strings.Repeat("v", 0x10000)}); err == nil {
		t.Fatal("expected error for oversized version")
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := mustEncode(t, Envelope{ExpiresAt: 7, Version: "v", Payload: []byte("x")})
	enc = append(enc, 0xDE, 0xAD)
	if _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestCorruptHeadersAndLengths(t *testing.T) {
	enc := mustEncode(t, Envelope{ExpiresAt: 9, Version: "ver", Payload: []byte("abc")})

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	badKind := append([]byte(nil), enc...)
	badKind[5] = kindEnvelope + 1
	if _, err := Decode(badKind); err == nil {
		t.Fatalf("expected error on bad kind")
	}

	// expiresAt at 6..13
	noExpiry := append([]byte(nil), enc...)
	binary.BigEndian.PutUint64(noExpiry[6:14], 0)
	if _, err := Decode(noExpiry); err == nil {
		t.Fatalf("expected error on zero expiry")
	}

	// vlen at 14..15
	badVlen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint16(badVlen[14:16], 0xFFFF)
	if _, err := Decode(badVlen); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	// plen follows the 3 version bytes: 16+3 = 19..22
	badPlen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(badPlen[19:23], uint32(len("abc")+1))
	if _, err := Decode(badPlen); err == nil {
		t.Fatalf("expected error on plen beyond buffer")
	}

	if _, err := Decode(enc[:len(enc)-1]); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
	if _, err := Decode(enc[:10]); err == nil {
		t.Fatalf("expected error on truncated header")
	}
	if _, err := Decode([]byte("not-wire-format")); err == nil {
		t.Fatalf("expected error on foreign bytes")
	}
}

func TestZeroCopyPayload(t *testing.T) {
	enc := mustEncode(t, Envelope{ExpiresAt: 1, Payload: []byte("Z")})
	e := mustDecode(t, enc)
	e.Payload[0] = 'Q'
	if mustDecode(t, enc).Payload[0] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}
