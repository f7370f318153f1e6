package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringList is a list column stored as a comma-joined string.
// Entries are trimmed and empty entries dropped when read back.
type StringList []string

// ParseStringList splits a comma-joined value
func ParseStringList(s string) StringList {
	list := StringList{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

func (l StringList) String() string {
	return strings.Join(l, ",")
}

// Contains reports whether v is in the list, ignoring case
func (l StringList) Contains(v string) bool {
	v = strings.TrimSpace(v)
	for _, item := range l {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	return l.String(), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = StringList{}
	case string:
		*l = ParseStringList(v)
	case []byte:
		*l = ParseStringList(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	return nil
}
