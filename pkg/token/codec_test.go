package token

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("ab"),
		[]byte("abc"),
		[]byte(`{"typ":"JWT","alg":"HS256"}`),
		{0xfb, 0xff, 0x00, 0x3e, 0x3f}, // bytes that hit - and _ in the URL alphabet
	}

	for _, in := range cases {
		enc := Encode(in)
		if strings.ContainsAny(enc, "+/=") {
			t.Fatalf("Encode(%q) = %q contains non-URL-safe characters", in, enc)
		}
		out, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%q): %v", enc, err)
		}
		if !bytes.Equal(in, out) {
			t.Fatalf("round trip mismatch: in=%q out=%q", in, out)
		}
	}
}

func TestDecodeAcceptsStandardAlphabetAndPadding(t *testing.T) {
	// "??>" encodes to "Pz8-" URL-safe, "Pz8+" standard.
	out, err := Decode("Pz8+")
	if err != nil {
		t.Fatalf("Decode standard alphabet: %v", err)
	}
	if string(out) != "??>" {
		t.Fatalf("unexpected decode result: %q", out)
	}

	out, err = Decode("YWI=")
	if err != nil {
		t.Fatalf("Decode padded input: %v", err)
	}
	if string(out) != "ab" {
		t.Fatalf("unexpected decode result: %q", out)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("not base64 !!!"); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	h, p, s, err := Split("aaa.bbb.ccc")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if h != "aaa" || p != "bbb" || s != "ccc" {
		t.Fatalf("unexpected segments: %q %q %q", h, p, s)
	}

	for _, bad := range []string{"", "aaa", "aaa.bbb", "a.b.c.d"} {
		if _, _, _, err := Split(bad); err != ErrMalformed {
			t.Fatalf("Split(%q): expected ErrMalformed, got %v", bad, err)
		}
	}
}
