package plan

import (
	"encoding/base64"

	json "github.com/goccy/go-json"
)

// ShareQueryParam is the query parameter carrying an encoded plan on a share
// URL.
const ShareQueryParam = "plan"

// EncodeShareLink serializes the state to JSON and base64-encodes it into a
// single opaque query parameter value.
func EncodeShareLink(state State) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeShareLink reverses EncodeShareLink. Decode failures of any kind
// (bad base64, malformed JSON, invalid state) are discarded rather than
// surfaced: the fallback state is returned and the second result is false.
func DecodeShareLink(param string, fallback State) (State, bool) {
	data, err := base64.RawURLEncoding.DecodeString(param)
	if err != nil {
		return fallback, false
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fallback, false
	}
	if err := state.Validate(); err != nil {
		return fallback, false
	}
	return state, true
}
