package wallet

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrInvalidName    = errors.New("invalid wallet name")
	ErrNoWallet       = errors.New("no wallet configured")
)

// Wallet holds metadata for a single wallet. Keys never leave the keystore.
type Wallet struct {
	Name      string `json:"name" validate:"required"`
	Address   string `json:"address" validate:"required,eth_addr"`
	Type      string `json:"type" validate:"oneof=signing watch-only"`
	KeyRef    string `json:"key_ref,omitempty" validate:"required_if=Type signing"`
	IsDefault bool   `json:"is_default,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CanSign reports whether the wallet holds a key.
func (w *Wallet) CanSign() bool { return w.Type == TypeSigning }

// Store persists wallet metadata.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager owns the wallet set. It loads the store lazily on first use and
// writes it back after every change.
type Manager struct {
	store   Store
	ks      KeystoreBackend
	wallets map[string]*Wallet
	loaded  bool
}

type Option func(*Manager)

// WithInMemoryStore keeps wallets and keys in memory.
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
		m.ks = NewInMemoryKeystore()
	}
}

func WithStore(s Store) Option { return func(m *Manager) { m.store = s } }

func WithKeystore(ks KeystoreBackend) Option { return func(m *Manager) { m.ks = ks } }

// NewManager defaults to an in-memory store and keystore.
func NewManager(opts ...Option) *Manager {
	m := &Manager{wallets: make(map[string]*Wallet), store: &memStore{}}
	for _, opt := range opts {
		opt(m)
	}
	if m.ks == nil {
		m.ks = NewInMemoryKeystore()
	}
	return m
}

// Keystore returns the key backend used for signing wallets.
func (m *Manager) Keystore() KeystoreBackend { return m.ks }

// Add registers a pre-built wallet, usually watch-only. The address is
// stored checksummed.
func (m *Manager) Add(name string, w *Wallet) error {
	if err := m.reserve(name); err != nil {
		return err
	}
	if !common.IsHexAddress(w.Address) {
		return fmt.Errorf("invalid address %q", w.Address)
	}
	w.Name = name
	w.Address = common.HexToAddress(w.Address).Hex()
	if w.CreatedAt == "" {
		w.CreatedAt = now()
	}
	m.wallets[name] = w
	return m.persist()
}

// AddWithKey derives the address of hexKey and stores a signing wallet.
// The key itself goes to the keystore.
func (m *Manager) AddWithKey(name, hexKey string) error {
	if err := m.reserve(name); err != nil {
		return err
	}
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	_, err = m.addSigning(name, hexKey, crypto.PubkeyToAddress(key.PublicKey))
	return err
}

// Generate creates a signing wallet with a fresh key and returns the
// 0x-prefixed key so it can be shown once.
func (m *Manager) Generate(name string) (*Wallet, string, error) {
	if err := m.reserve(name); err != nil {
		return nil, "", err
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", fmt.Errorf("generating key: %w", err)
	}
	hexKey := hexutil.Encode(crypto.FromECDSA(key))
	w, err := m.addSigning(name, hexKey, crypto.PubkeyToAddress(key.PublicKey))
	if err != nil {
		return nil, "", err
	}
	return w, hexKey, nil
}

// ExportKey returns the stored private key of a signing wallet.
func (m *Manager) ExportKey(name string) (string, error) {
	w, err := m.Get(name)
	if err != nil {
		return "", err
	}
	if !w.CanSign() {
		return "", fmt.Errorf("wallet %q is watch-only", name)
	}
	return m.ks.Retrieve(w.KeyRef)
}

func (m *Manager) Get(name string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	return w, nil
}

// FindByAddress returns the wallet holding addr, if any.
func (m *Manager) FindByAddress(addr string) (*Wallet, bool) {
	if !common.IsHexAddress(addr) {
		return nil, false
	}
	want := common.HexToAddress(addr)
	return lo.Find(m.List(), func(w *Wallet) bool { return common.HexToAddress(w.Address) == want })
}

// Remove deletes a wallet and its key.
func (m *Manager) Remove(name string) error {
	w, err := m.Get(name)
	if err != nil {
		return err
	}
	if w.KeyRef != "" {
		if err := m.ks.Delete(w.KeyRef); err != nil {
			return fmt.Errorf("deleting key: %w", err)
		}
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets sorted by name. A store that fails to load
// lists nothing.
func (m *Manager) List() []*Wallet {
	if err := m.load(); err != nil {
		return nil
	}
	out := lo.Values(m.wallets)
	slices.SortFunc(out, func(a, b *Wallet) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Signing lists the wallets that can send transactions.
func (m *Manager) Signing() []*Wallet {
	return lo.Filter(m.List(), func(w *Wallet, _ int) bool { return w.CanSign() })
}

// SetDefault marks name as the only default wallet.
func (m *Manager) SetDefault(name string) error {
	if _, err := m.Get(name); err != nil {
		return err
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the wallet marked default, else the only wallet, else nil.
func (m *Manager) Default() *Wallet {
	all := m.List()
	if w, ok := lo.Find(all, func(w *Wallet) bool { return w.IsDefault }); ok {
		return w
	}
	if len(all) == 1 {
		return all[0]
	}
	return nil
}

// Resolve returns the named wallet, or the default when name is empty.
func (m *Manager) Resolve(name string) (*Wallet, error) {
	if name != "" {
		return m.Get(name)
	}
	if w := m.Default(); w != nil {
		return w, nil
	}
	return nil, ErrNoWallet
}

// reserve loads the store and checks that name is usable and free. Names
// that parse as addresses are refused since flags accept either.
func (m *Manager) reserve(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	switch {
	case name == "" || strings.ContainsAny(name, " \t\n"):
		return fmt.Errorf("%w %q: must be non-empty without spaces", ErrInvalidName, name)
	case common.IsHexAddress(name):
		return fmt.Errorf("%w %q: looks like an address", ErrInvalidName, name)
	}
	if _, exists := m.wallets[name]; exists {
		return fmt.Errorf("%w: %q", ErrWalletExists, name)
	}
	return nil
}

func (m *Manager) addSigning(name, hexKey string, addr common.Address) (*Wallet, error) {
	ref, err := m.ks.Store(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}
	w := &Wallet{Name: name, Address: addr.Hex(), Type: TypeSigning, KeyRef: ref, CreatedAt: now()}
	m.wallets[name] = w
	return w, m.persist()
}

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	return m.store.Save(m.List())
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// memStore keeps wallets for the lifetime of the process.
type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) { return s.wallets, nil }

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}
