package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

func decodeJson(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}

	return nil
}
