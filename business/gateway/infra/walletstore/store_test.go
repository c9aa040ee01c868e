package walletstore

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/cardex/gateway/internal/apperror"
)

func newTestStore(t *testing.T, passphrase string) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), passphrase)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func genKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, "correct horse battery staple")
	key := genKey(t)
	const addr = "addr1qxy2k"

	if err := s.Save(addr, key); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.SigningKey(context.Background(), addr)
	if err != nil {
		t.Fatalf("SigningKey: %v", err)
	}
	if !key.Equal(loaded) {
		t.Error("decrypted key differs from the saved key")
	}
}

func TestSigningKeyUnknownAddress(t *testing.T) {
	s := newTestStore(t, "pw")

	_, err := s.SigningKey(context.Background(), "addr1missing")
	if got := apperror.GetCode(err); got != apperror.CodeWalletNotFound {
		t.Errorf("code = %s, want %s", got, apperror.CodeWalletNotFound)
	}
}

func TestSigningKeyWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	key := genKey(t)
	const addr = "addr1qxy2k"

	s1, err := NewStore(dir, "right")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s1.Save(addr, key); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s2, err := NewStore(dir, "wrong")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = s2.SigningKey(context.Background(), addr)
	if got := apperror.GetCode(err); got != apperror.CodeWalletDecrypt {
		t.Errorf("code = %s, want %s", got, apperror.CodeWalletDecrypt)
	}
}

func TestAddresses(t *testing.T) {
	s := newTestStore(t, "pw")
	for _, addr := range []string{"addr1aaa", "addr1bbb"} {
		if err := s.Save(addr, genKey(t)); err != nil {
			t.Fatalf("Save(%s): %v", addr, err)
		}
	}

	addrs, err := s.Addresses()
	if err != nil {
		t.Fatalf("Addresses: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("Addresses() = %v, want 2 entries", addrs)
	}
}

func TestEmptyPassphraseRejected(t *testing.T) {
	if _, err := NewStore(t.TempDir(), ""); err == nil {
		t.Error("expected error for empty passphrase")
	}
}
