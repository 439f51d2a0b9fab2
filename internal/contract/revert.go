package contract

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// knownErrors are custom errors common enough in mint contracts to be worth
// decoding by name.
var knownErrors = mustErrors(map[string][]string{
	"OwnableUnauthorizedAccount":       {"address"},
	"OwnableInvalidOwner":              {"address"},
	"AccessControlUnauthorizedAccount": {"address", "bytes32"},
	"ERC721InvalidReceiver":            {"address"},
	"ERC721InvalidSender":              {"address"},
	"ERC721NonexistentToken":           {"uint256"},
	"ERC20InsufficientBalance":         {"address", "uint256", "uint256"},
	"ERC20InvalidReceiver":             {"address"},
	"EnforcedPause":                    nil,
	"ReentrancyGuardReentrantCall":     nil,
	"MintPriceNotPaid":                 nil,
	"MaxSupplyExceeded":                nil,
})

func mustErrors(defs map[string][]string) map[[4]byte]abi.Error {
	out := make(map[[4]byte]abi.Error, len(defs))
	for name, types := range defs {
		var args abi.Arguments
		for i, typ := range types {
			t, err := abi.NewType(typ, "", nil)
			if err != nil {
				panic(err)
			}
			args = append(args, abi.Argument{Name: fmt.Sprintf("arg%d", i), Type: t})
		}
		e := abi.NewError(name, args)
		var sel [4]byte
		copy(sel[:], e.ID[:4])
		out[sel] = e
	}
	return out
}

// DecodeRevert turns raw revert data plus the node's message into a short
// human-readable reason. It understands Error(string), Panic(uint256) and a
// handful of well-known custom errors; anything else is shown by selector.
func DecodeRevert(data []byte, message string) string {
	if len(data) >= 4 {
		if reason, err := abi.UnpackRevert(data); err == nil {
			return reason
		}
		var sel [4]byte
		copy(sel[:], data[:4])
		if e, ok := knownErrors[sel]; ok {
			return formatCustomError(e, data[4:])
		}
		if msg := cleanMessage(message); msg != "" {
			return msg
		}
		return "custom error 0x" + hex.EncodeToString(sel[:])
	}
	return cleanMessage(message)
}

func formatCustomError(e abi.Error, payload []byte) string {
	if len(e.Inputs) == 0 {
		return e.Name
	}
	vs, err := e.Inputs.Unpack(payload)
	if err != nil {
		return e.Name
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		switch x := v.(type) {
		case common.Address:
			parts[i] = x.Hex()
		case [32]byte:
			parts[i] = "0x" + hex.EncodeToString(x[:])
		default:
			parts[i] = fmt.Sprint(x)
		}
	}
	return e.Name + "(" + strings.Join(parts, ", ") + ")"
}

// cleanMessage strips node boilerplate from a revert message.
func cleanMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	for _, prefix := range []string{"execution reverted:", "execution reverted", "reverted:"} {
		if strings.HasPrefix(strings.ToLower(msg), prefix) {
			msg = strings.TrimSpace(msg[len(prefix):])
		}
	}
	return msg
}
