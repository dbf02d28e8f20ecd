package mpesa

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Code is a Daraja result or response code. The API sends these both as
// JSON numbers and as strings depending on the endpoint.
type Code string

const CodeSuccess Code = "0"

func (c *Code) UnmarshalJSON(data []byte) error {
	s, ok, err := scalarString(data)
	if err != nil {
		return err
	}
	if ok {
		*c = Code(strings.TrimSpace(s))
	}
	return nil
}

func (c Code) OK() bool {
	return c == CodeSuccess
}

// scalarString renders a JSON string or number as text. null reports
// ok=false.
func scalarString(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", false, err
	}
	return n.String(), true, nil
}
