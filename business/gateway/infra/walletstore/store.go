// Package walletstore keeps signing keys encrypted at rest. Each wallet
// is one JSON file: scrypt derives the cipher key from the passphrase,
// AES-256-GCM seals the ed25519 private key.
package walletstore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/cardex/gateway/business/gateway/app"
	"github.com/cardex/gateway/internal/apperror"
)

const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	cipherKeyLen = 32
	saltLen      = 16

	fileExt = ".wallet.json"
)

type walletFile struct {
	Address    string `json:"address"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
	ScryptN    int    `json:"scrypt_n"`
	ScryptR    int    `json:"scrypt_r"`
	ScryptP    int    `json:"scrypt_p"`
}

// Store is a directory of encrypted wallet files.
type Store struct {
	dir        string
	passphrase []byte
}

var _ app.WalletStore = (*Store)(nil)

// NewStore opens (creating if needed) the wallet directory.
func NewStore(dir, passphrase string) (*Store, error) {
	if passphrase == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("wallet passphrase is empty"))
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("walletstore: create dir: %w", err)
	}
	return &Store{dir: dir, passphrase: []byte(passphrase)}, nil
}

func (s *Store) path(address string) string {
	return filepath.Join(s.dir, address+fileExt)
}

// Save encrypts and persists a signing key under its address.
func (s *Store) Save(address string, key ed25519.PrivateKey) error {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("walletstore: salt: %w", err)
	}

	gcm, err := s.aead(salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("walletstore: nonce: %w", err)
	}

	// The address is bound as additional data so a file cannot be
	// renamed to serve a different address.
	sealed := gcm.Seal(nil, nonce, key, []byte(address))

	data, err := json.MarshalIndent(walletFile{
		Address:    address,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed),
		ScryptN:    scryptN,
		ScryptR:    scryptR,
		ScryptP:    scryptP,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("walletstore: marshal: %w", err)
	}

	return os.WriteFile(s.path(address), data, 0o600)
}

// SigningKey loads and decrypts the key for an address.
func (s *Store) SigningKey(ctx context.Context, address string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(s.path(address))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.New(apperror.CodeWalletNotFound,
				apperror.WithContext(fmt.Sprintf("address=%s", address)))
		}
		return nil, fmt.Errorf("walletstore: read: %w", err)
	}

	var wf walletFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, apperror.New(apperror.CodeWalletDecrypt,
			apperror.WithContext(fmt.Sprintf("address=%s malformed wallet file", address)),
			apperror.WithCause(err))
	}

	salt, err := base64.StdEncoding.DecodeString(wf.Salt)
	if err != nil {
		return nil, s.decryptErr(address, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(wf.Nonce)
	if err != nil {
		return nil, s.decryptErr(address, err)
	}
	sealed, err := base64.StdEncoding.DecodeString(wf.Ciphertext)
	if err != nil {
		return nil, s.decryptErr(address, err)
	}

	gcm, err := s.aead(salt)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, s.decryptErr(address, fmt.Errorf("bad nonce length %d", len(nonce)))
	}

	key, err := gcm.Open(nil, nonce, sealed, []byte(address))
	if err != nil {
		return nil, s.decryptErr(address, err)
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, s.decryptErr(address, fmt.Errorf("bad key length %d", len(key)))
	}
	return ed25519.PrivateKey(key), nil
}

// Addresses lists every stored wallet address.
func (s *Store) Addresses() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("walletstore: list: %w", err)
	}

	var addrs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		addrs = append(addrs, strings.TrimSuffix(e.Name(), fileExt))
	}
	return addrs, nil
}

func (s *Store) aead(salt []byte) (cipher.AEAD, error) {
	cipherKey, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, cipherKeyLen)
	if err != nil {
		return nil, fmt.Errorf("walletstore: kdf: %w", err)
	}
	block, err := aes.NewCipher(cipherKey)
	if err != nil {
		return nil, fmt.Errorf("walletstore: cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func (s *Store) decryptErr(address string, cause error) error {
	return apperror.New(apperror.CodeWalletDecrypt,
		apperror.WithContext(fmt.Sprintf("address=%s", address)),
		apperror.WithCause(cause))
}
