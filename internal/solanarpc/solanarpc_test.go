package solanarpc

import (
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestParseLookupTableAddresses(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	data := make([]byte, lutHeaderSize+64)
	copy(data[lutHeaderSize:], a[:])
	copy(data[lutHeaderSize+32:], b[:])

	addrs, err := ParseLookupTableAddresses(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("len(addrs) = %d, want 2", len(addrs))
	}
	if !addrs[0].Equals(a) || !addrs[1].Equals(b) {
		t.Errorf("addrs = %v, want [%s %s]", addrs, a, b)
	}
}

func TestParseLookupTableAddressesTooShort(t *testing.T) {
	if _, err := ParseLookupTableAddresses(make([]byte, lutHeaderSize-1)); err == nil {
		t.Error("expected error for short account data")
	}
}

func TestParseLookupTableAddressesMisaligned(t *testing.T) {
	if _, err := ParseLookupTableAddresses(make([]byte, lutHeaderSize+31)); err == nil {
		t.Error("expected error for non-multiple-of-32 address section")
	}
}
