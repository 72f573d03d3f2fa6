package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DistributionShare is one ranked slice of the reward split.
// Position 1 is first place; percentages are whole percent.
type DistributionShare struct {
	Position   uint32 `json:"position"`
	Percentage uint32 `json:"percentage"`
}

// DistributionList persists as a JSONB column.
type DistributionList []DistributionShare

func (d DistributionList) Value() (driver.Value, error) {
	if d == nil {
		d = DistributionList{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *DistributionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = DistributionList{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("distribution: unsupported scan type %T", src)
	}
}

// StringList persists an ordered list of identities (winners, skills) as JSONB.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("stringlist: unsupported scan type %T", src)
	}
}
