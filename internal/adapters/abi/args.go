package abi

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// ParseArgs converts command-line strings into the Go values Pack expects
// for each input. Arrays and slices are written as [a,b,c].
func ParseArgs(inputs ethabi.Arguments, raw []string) ([]any, error) {
	if len(inputs) != len(raw) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(raw))
	}

	out := make([]any, len(raw))
	for i, input := range inputs {
		v, err := parseValue(input.Type, strings.TrimSpace(raw[i]))
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, input.Type.String(), err)
		}
		out[i] = v.Interface()
	}
	return out, nil
}

func parseValue(t ethabi.Type, s string) (reflect.Value, error) {
	switch t.T {
	case ethabi.AddressTy:
		if !common.IsHexAddress(s) {
			return reflect.Value{}, fmt.Errorf("invalid address %q", s)
		}
		return reflect.ValueOf(common.HexToAddress(s)), nil

	case ethabi.UintTy, ethabi.IntTy:
		return parseInteger(t, s)

	case ethabi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bool %q", s)
		}
		return reflect.ValueOf(b), nil

	case ethabi.StringTy:
		return reflect.ValueOf(s), nil

	case ethabi.BytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bytes %q: %w", s, err)
		}
		return reflect.ValueOf(b), nil

	case ethabi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bytes%d %q: %w", t.Size, s, err)
		}
		if len(b) != t.Size {
			return reflect.Value{}, fmt.Errorf("bytes%d needs %d bytes, got %d", t.Size, t.Size, len(b))
		}
		v := reflect.New(t.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v, nil

	case ethabi.SliceTy, ethabi.ArrayTy:
		items := splitList(s)
		if t.T == ethabi.ArrayTy && len(items) != t.Size {
			return reflect.Value{}, fmt.Errorf("array needs %d elements, got %d", t.Size, len(items))
		}
		var v reflect.Value
		if t.T == ethabi.SliceTy {
			v = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			v = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			elem, err := parseValue(*t.Elem, item)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			v.Index(i).Set(elem)
		}
		return v, nil

	default:
		return reflect.Value{}, fmt.Errorf("unsupported type %s", t.String())
	}
}

func parseInteger(t ethabi.Type, s string) (reflect.Value, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return reflect.Value{}, fmt.Errorf("invalid integer %q", s)
	}
	if t.T == ethabi.UintTy && n.Sign() < 0 {
		return reflect.Value{}, fmt.Errorf("negative value %s for unsigned type", s)
	}
	if n.BitLen() > t.Size {
		return reflect.Value{}, fmt.Errorf("value %s overflows %s", s, t.String())
	}

	goType := t.GetType()
	if goType == bigIntType {
		return reflect.ValueOf(n), nil
	}

	v := reflect.New(goType).Elem()
	switch goType.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(n.Uint64())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !n.IsInt64() || v.OverflowInt(n.Int64()) {
			return reflect.Value{}, fmt.Errorf("value %s overflows %s", s, t.String())
		}
		v.SetInt(n.Int64())
	default:
		return reflect.Value{}, fmt.Errorf("unsupported integer type %s", goType)
	}
	return v, nil
}

// splitList splits "[a, b, c]" into its trimmed elements.
func splitList(s string) []string {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
