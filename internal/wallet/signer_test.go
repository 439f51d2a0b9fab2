package wallet

import (
	"errors"
	"math/big"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat/Anvil account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore is a file-backed Keystore in a temp dir, so no OS keychain
// prompt appears.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "w3mint-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: func(string) (string, error) { return "testpass", nil },
	})
	require.NoError(t, err)
	return &Keystore{ring: ring}
}

// countingKeystore records Retrieve calls.
type countingKeystore struct {
	KeystoreBackend
	retrieves int
	err       error
}

func (c *countingKeystore) Retrieve(ref string) (string, error) {
	c.retrieves++
	if c.err != nil {
		return "", c.err
	}
	return c.KeystoreBackend.Retrieve(ref)
}

func mintTx(nonce uint64, chainID int64) *types.Transaction {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(chainID),
		Nonce:     nonce,
		To:        &to,
		Value:     big.NewInt(1e15),
		Gas:       200_000,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
		Data:      []byte{0x6a, 0x62, 0x78, 0x42},
	})
}

func signingWallet(t *testing.T, ks KeystoreBackend) *Wallet {
	t.Helper()
	ref, err := ks.Store("minter", testPrivKeyHex)
	require.NoError(t, err)
	return &Wallet{Name: "minter", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
}

func TestSignTxRecoversSender(t *testing.T) {
	ks := testKeystore(t)
	s := NewSigner(signingWallet(t, ks), ks)
	assert.Equal(t, testSignerAddr, s.Address())

	raw, err := s.SignTx(mintTx(0, 8453), big.NewInt(8453))
	require.NoError(t, err)

	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(raw))
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, int64(8453), tx.ChainId().Int64())
	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(8453)), &tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), from)
}

func TestSignTxReadsKeyOnce(t *testing.T) {
	ks := &countingKeystore{KeystoreBackend: NewInMemoryKeystore()}
	s := NewSigner(signingWallet(t, ks), ks)

	for nonce := range uint64(3) {
		_, err := s.SignTx(mintTx(nonce, 1), big.NewInt(1))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, ks.retrieves)
}

func TestSignTxChainIDChangesSignature(t *testing.T) {
	ks := NewInMemoryKeystore()
	s := NewSigner(signingWallet(t, ks), ks)

	a, err := s.SignTx(mintTx(0, 1), big.NewInt(1))
	require.NoError(t, err)
	b, err := s.SignTx(mintTx(0, 84532), big.NewInt(84532))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSignTxErrors(t *testing.T) {
	declined := &countingKeystore{KeystoreBackend: NewInMemoryKeystore(), err: ErrSigningDeclined}
	tests := []struct {
		name   string
		wallet *Wallet
		ks     KeystoreBackend
		is     error
		substr string
	}{
		{
			name:   "watch-only",
			wallet: &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly},
			ks:     NewInMemoryKeystore(),
			is:     ErrWatchOnly,
		},
		{
			name:   "no keychain",
			wallet: &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3mint.w"},
			ks:     &Keystore{},
			substr: "retrieving key",
		},
		{
			name:   "missing key",
			wallet: &Wallet{Name: "ghost", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3mint.ghost"},
			ks:     NewInMemoryKeystore(),
			substr: "retrieving key",
		},
		{
			name:   "declined unlock",
			wallet: &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3mint.w"},
			ks:     declined,
			is:     ErrSigningDeclined,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSigner(tt.wallet, tt.ks).SignTx(mintTx(0, 1), big.NewInt(1))
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "got %v", err)
			}
			if tt.substr != "" {
				assert.Contains(t, err.Error(), tt.substr)
			}
		})
	}
}

func TestSignTxRejectsKeyForOtherAddress(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("mismatch", testPrivKeyHex)
	require.NoError(t, err)
	w := &Wallet{Name: "mismatch", Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", Type: TypeSigning, KeyRef: ref}

	_, err = NewSigner(w, ks).SignTx(mintTx(0, 1), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "derives "+testSignerAddr)
}

// ---------------------------------------------------------------------------
// InMemoryKeystore
// ---------------------------------------------------------------------------

func TestInMemoryKeystoreRoundTrip(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, err := iks.Store("mykey", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "w3mint.mykey", ref)

	val, err := iks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", val)

	_, err = iks.Store("mykey", "0xfeed")
	require.NoError(t, err)
	val, _ = iks.Retrieve(ref)
	assert.Equal(t, "0xfeed", val, "store overwrites")

	require.NoError(t, iks.Delete(ref))
	_, err = iks.Retrieve(ref)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
	assert.NoError(t, iks.Delete("w3mint.ghost"), "deleting a missing key is not an error")
}
