package contract

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ErrEmptyReturn is returned when a call produced no data, which usually
// means the accessor does not exist or the address has no code.
var ErrEmptyReturn = errors.New("empty return data")

// Method is a function parsed from its canonical signature.
type Method struct {
	Name      string
	Signature string
	Selector  [4]byte
	Inputs    abi.Arguments
}

// ParseSignature parses "name(type1,type2)" into a Method. Parameter
// names such as "transfer(address to, uint256 amount)" are dropped. Tuple
// parameters are not supported.
func ParseSignature(sig string) (*Method, error) {
	sig = strings.TrimSpace(sig)
	open := strings.IndexByte(sig, '(')
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return nil, fmt.Errorf("malformed signature %q", sig)
	}
	name := strings.TrimSpace(sig[:open])
	body := strings.TrimSpace(sig[open+1 : len(sig)-1])
	if strings.ContainsAny(body, "()") {
		return nil, fmt.Errorf("tuple parameters are not supported: %q", sig)
	}

	var types []string
	if body != "" {
		for i, part := range strings.Split(body, ",") {
			fields := strings.Fields(part)
			if len(fields) == 0 {
				return nil, fmt.Errorf("parameter %d of %q is empty", i, sig)
			}
			types = append(types, fields[0])
		}
	}
	canonical := name + "(" + strings.Join(types, ",") + ")"

	m := &Method{Name: name, Signature: canonical, Selector: Selector(canonical)}
	for i, typ := range types {
		t, err := abi.NewType(typ, "", nil)
		if err != nil {
			return nil, fmt.Errorf("parameter %d of %q: %w", i, sig, err)
		}
		m.Inputs = append(m.Inputs, abi.Argument{Name: fmt.Sprintf("arg%d", i), Type: t})
	}
	return m, nil
}

// Pack ABI-encodes args and prefixes the selector.
func (m *Method) Pack(args ...any) ([]byte, error) {
	if len(args) != len(m.Inputs) {
		return nil, fmt.Errorf("%s: want %d arguments, got %d", m.Signature, len(m.Inputs), len(args))
	}
	packed, err := m.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Signature, err)
	}
	return append(m.Selector[:], packed...), nil
}

// Encode builds calldata for sig with args.
func Encode(sig string, args ...any) ([]byte, error) {
	m, err := ParseSignature(sig)
	if err != nil {
		return nil, err
	}
	return m.Pack(args...)
}

// Selector computes the 4-byte function selector for a canonical signature.
func Selector(sig string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	var out [4]byte
	copy(out[:], h.Sum(nil)[:4])
	return out
}

// SelectorHex returns the selector as a 0x-prefixed hex string.
func SelectorHex(sig string) string {
	s := Selector(sig)
	return "0x" + hex.EncodeToString(s[:])
}

// DecodeUint decodes a single unsigned integer return value.
func DecodeUint(data []byte) (*big.Int, error) {
	vs, err := decode("uint256", data)
	if err != nil {
		return nil, err
	}
	v, ok := vs[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected return type %T", vs[0])
	}
	return v, nil
}

// DecodeAddress decodes a single address return value.
func DecodeAddress(data []byte) (common.Address, error) {
	vs, err := decode("address", data)
	if err != nil {
		return common.Address{}, err
	}
	a, ok := vs[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected return type %T", vs[0])
	}
	return a, nil
}

// DecodeString decodes a single string return value.
func DecodeString(data []byte) (string, error) {
	vs, err := decode("string", data)
	if err != nil {
		return "", err
	}
	s, ok := vs[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected return type %T", vs[0])
	}
	return s, nil
}

func decode(typ string, data []byte) ([]any, error) {
	if len(data) == 0 {
		return nil, ErrEmptyReturn
	}
	t, err := abi.NewType(typ, "", nil)
	if err != nil {
		return nil, err
	}
	vs, err := abi.Arguments{{Type: t}}.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", typ, err)
	}
	if len(vs) != 1 {
		return nil, fmt.Errorf("decoding %s: got %d values", typ, len(vs))
	}
	return vs, nil
}
