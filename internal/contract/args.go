package contract

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PackStrings encodes command-line arguments after converting each one to
// the Go type its ABI parameter expects.
func (m *Method) PackStrings(args []string) ([]byte, error) {
	if len(args) != len(m.Inputs) {
		return nil, fmt.Errorf("%s: want %d arguments, got %d", m.Signature, len(m.Inputs), len(args))
	}
	vals := make([]any, len(args))
	for i, s := range args {
		v, err := coerce(m.Inputs[i].Type, s)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", m.Signature, i, err)
		}
		vals[i] = v
	}
	return m.Pack(vals...)
}

func coerce(t abi.Type, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("want %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr.Slice(0, t.Size), reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		if t.T == abi.UintTy && n.Sign() < 0 {
			return nil, fmt.Errorf("%s cannot be negative", t)
		}
		if t.T == abi.UintTy && n.BitLen() > t.Size {
			return nil, fmt.Errorf("%s overflows %s", s, t)
		}
		// Sizes other than 8/16/32/64 are carried as *big.Int.
		if t.GetType().Kind() == reflect.Ptr {
			return n, nil
		}
		v := reflect.New(t.GetType()).Elem()
		if t.T == abi.UintTy {
			if !n.IsUint64() || v.OverflowUint(n.Uint64()) {
				return nil, fmt.Errorf("%s overflows %s", s, t)
			}
			v.SetUint(n.Uint64())
		} else {
			if !n.IsInt64() || v.OverflowInt(n.Int64()) {
				return nil, fmt.Errorf("%s overflows %s", s, t)
			}
			v.SetInt(n.Int64())
		}
		return v.Interface(), nil
	default:
		return nil, fmt.Errorf("type %s is not supported on the command line", t)
	}
}
