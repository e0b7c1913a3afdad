package req

import (
	"errors"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Decode - reads a JSON body into T. An empty body gives the zero T.
func Decode[T any](body io.Reader) (T, error) {
	var payload T
	if body == nil {
		return payload, nil
	}
	err := json.NewDecoder(body).Decode(&payload)
	if errors.Is(err, io.EOF) {
		return payload, nil
	}
	return payload, err
}
