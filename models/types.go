// File: /models/types.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice is a JSON array of strings stored in a single column.
type StringSlice []string

// Value implements driver.Valuer interface for database storage
func (ss StringSlice) Value() (driver.Value, error) {
	if ss == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(ss))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for database retrieval
func (ss *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*ss = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ss)
	case string:
		return json.Unmarshal([]byte(v), ss)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// GormDataType returns the data type for GORM
func (StringSlice) GormDataType() string {
	return "json"
}

// MarshalJSON always renders an array, never null
func (ss StringSlice) MarshalJSON() ([]byte, error) {
	if ss == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(ss))
}

// Contains reports whether v is present at least once.
func (ss StringSlice) Contains(v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

// Without returns a copy with the first occurrence of v removed.
func (ss StringSlice) Without(v string) StringSlice {
	out := make(StringSlice, 0, len(ss))
	removed := false
	for _, s := range ss {
		if !removed && s == v {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out
}

// IntSlice is a JSON array of integers stored in a single column.
type IntSlice []int

func (is IntSlice) Value() (driver.Value, error) {
	if is == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int(is))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (is *IntSlice) Scan(value interface{}) error {
	if value == nil {
		*is = IntSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, is)
	case string:
		return json.Unmarshal([]byte(v), is)
	default:
		return fmt.Errorf("cannot scan %T into IntSlice", value)
	}
}

func (IntSlice) GormDataType() string {
	return "json"
}

func (is IntSlice) MarshalJSON() ([]byte, error) {
	if is == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(is))
}
