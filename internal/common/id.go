package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a numeric identifier the resource API may send either as a JSON
// number or as a numeric string. It always marshals back as a number.
type ID int

func (id ID) String() string {
	return strconv.Itoa(int(id))
}

func (id ID) Valid() bool {
	return id > 0
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		data = []byte(s)
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil || n != float64(int(n)) {
		return fmt.Errorf("invalid id %s", data)
	}

	*id = ID(n)
	return nil
}

// ParseID parses a path or query parameter into an ID.
func ParseID(s string) (ID, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return ID(n), nil
}
