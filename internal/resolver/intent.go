package resolver

import (
	"github.com/ethereum/go-ethereum/common"
)

// IntentKind identifies the high-level action the user wants performed.
type IntentKind string

// IntentMint mints one token to a recipient.
const IntentMint IntentKind = "mint"

// Intent is what the user wants done, independent of how the contract
// exposes it.
type Intent struct {
	Kind      IntentKind `validate:"required,oneof=mint"`
	Recipient string     `validate:"required,eth_addr"`
	// TokenURI, when set, adds the metadata-taking mint forms after the
	// standard candidates.
	TokenURI string `validate:"omitempty,max=2048"`
}

// MintTo returns a mint intent for recipient.
func MintTo(recipient string) Intent {
	return Intent{Kind: IntentMint, Recipient: recipient}
}

// WithTokenURI returns a copy of i carrying uri.
func (i Intent) WithTokenURI(uri string) Intent {
	i.TokenURI = uri
	return i
}

func (i Intent) recipient() common.Address {
	return common.HexToAddress(i.Recipient)
}

// Request carries everything Resolve needs. FeeOverride is the raw manual
// fee in display units; empty means no override.
type Request struct {
	Intent      Intent
	Contract    string `validate:"required,eth_addr"`
	Caller      string `validate:"required,eth_addr"`
	FeeOverride string
}
