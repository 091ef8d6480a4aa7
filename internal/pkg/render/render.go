package render

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type errResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ChiJSON encodes v before writing the header; a value that cannot be encoded
// becomes a 500 {"error"} response.
func ChiJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errResponse{Error: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// ChiErr renders {"error": err}.
func ChiErr(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	ChiJSON(w, r, status, errResponse{Error: msg})
}

// ChiMessage renders {"message": msg}.
func ChiMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	ChiJSON(w, r, status, messageResponse{Message: msg})
}

// DecodeJSON reads a JSON body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
