package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrWatchOnly is returned when a watch-only wallet is asked to sign.
var ErrWatchOnly = errors.New("watch-only wallet cannot sign")

// Signer signs transactions with one signing wallet's key. The key is read
// from the keystore on first use, so an unlock prompt appears at most once
// per Signer.
type Signer struct {
	wallet *Wallet
	ks     KeystoreBackend

	mu  sync.Mutex
	key *ecdsa.PrivateKey
}

func NewSigner(w *Wallet, ks KeystoreBackend) *Signer {
	return &Signer{wallet: w, ks: ks}
}

// Address is the wallet's checksummed address.
func (s *Signer) Address() string { return s.wallet.Address }

// SignTx signs tx for chainID with the latest signer rules and returns the
// raw encoded transaction. A declined unlock wraps ErrSigningDeclined.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	key, err := s.privateKey()
	if err != nil {
		return nil, err
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding signed transaction: %w", err)
	}
	return raw, nil
}

func (s *Signer) privateKey() (*ecdsa.PrivateKey, error) {
	if !s.wallet.CanSign() {
		return nil, fmt.Errorf("wallet %q: %w", s.wallet.Name, ErrWatchOnly)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != nil {
		return s.key, nil
	}

	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if errors.Is(err, ErrSigningDeclined) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if got := crypto.PubkeyToAddress(key.PublicKey); got != common.HexToAddress(s.wallet.Address) {
		return nil, fmt.Errorf("key for %q derives %s, want %s", s.wallet.Name, got.Hex(), s.wallet.Address)
	}
	s.key = key
	return key, nil
}
