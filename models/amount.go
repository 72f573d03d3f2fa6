package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"
)

// Amount is an i128-scale token amount in the asset's smallest unit.
// It persists as a decimal string (numeric(39,0) on Postgres) and marshals
// to a JSON string so clients never round it through a float.
type Amount struct {
	big.Int
}

func NewAmount(v int64) Amount {
	var a Amount
	a.SetInt64(v)
	return a
}

func AmountFromString(s string) (Amount, bool) {
	var a Amount
	if _, ok := a.SetString(strings.TrimSpace(s), 10); !ok {
		return Amount{}, false
	}
	return a, true
}

func (a *Amount) BigInt() *big.Int {
	return &a.Int
}

func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		a.SetInt64(0)
		return nil
	case int64:
		a.SetInt64(v)
		return nil
	case string:
		if _, ok := a.SetString(strings.TrimSpace(v), 10); !ok {
			return fmt.Errorf("amount: cannot parse %q", v)
		}
		return nil
	case []byte:
		if _, ok := a.SetString(strings.TrimSpace(string(v)), 10); !ok {
			return fmt.Errorf("amount: cannot parse %q", string(v))
		}
		return nil
	default:
		return fmt.Errorf("amount: unsupported scan type %T", src)
	}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		a.SetInt64(0)
		return nil
	}
	if _, ok := a.SetString(s, 10); !ok {
		return fmt.Errorf("amount: cannot parse %q", s)
	}
	return nil
}
