// Package iojson reads and writes the JSON documents that commands exchange
// with scripts.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// ErrorBody is written to stderr when a command fails in JSON mode.
type ErrorBody struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// WriteWith writes obj to w as indented JSON. When obj cannot be encoded an
// ErrorBody describing the failure is written to ew and the error returned.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return writeEncodeFailure(ew, err)
	}

	_, err = fmt.Fprintf(w, "%s\n", bits)
	return err
}

// Write writes obj to stdout, reporting encode failures on stderr.
func Write(obj any) error {
	return WriteWith(os.Stdout, os.Stderr, obj)
}

// WriteLine writes obj to w as one line of JSON.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s\n", bits)
	return err
}

// WriteErrorTo writes an ErrorBody to ew and returns an exit error so the
// command ends with status 1 without printing the message again.
func WriteErrorTo(ew io.Writer, msg string, data map[string]any) error {
	if err := WriteWith(ew, ew, ErrorBody{Message: msg, Data: data}); err != nil {
		return err
	}
	return cli.Exit("", 1)
}

// WriteError is WriteErrorTo on stderr.
func WriteError(msg string, data map[string]any) error {
	return WriteErrorTo(os.Stderr, msg, data)
}

// writeEncodeFailure builds its body by hand, since the failure may be in
// the encoder itself.
func writeEncodeFailure(ew io.Writer, encErr error) error {
	msg, _ := json.Marshal(encErr.Error())
	if _, err := fmt.Fprintf(ew, `{"message":"encode output","data":{"error":%s}}`+"\n", msg); err != nil {
		return err
	}
	return fmt.Errorf("encode output: %w", encErr)
}
