package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned when neither a file nor piped stdin was given.
var ErrNoInput = errors.New("no input provided (stdin is a terminal); use -f or pipe JSON in")

// Validator is implemented by inputs that check themselves after decoding.
type Validator interface {
	Validate() error
}

// Input decodes one JSON document of type T from the file named by its
// --file flag, or from stdin when no file is given.
type Input[T any] struct {
	path string

	// Stdin and Interactive replace os.Stdin and the TTY check in tests.
	Stdin       io.Reader
	Interactive func() bool
}

// Flag returns the --file/-f flag bound to this input.
func (in *Input[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON input (reads stdin when omitted)",
		TakesFile:   true,
		Destination: &in.path,
	}
}

// Read decodes the input. Unknown fields and trailing documents are
// rejected, and T.Validate runs when T implements Validator.
func (in *Input[T]) Read() (T, error) {
	var v T

	r, closer, err := in.open()
	if err != nil {
		return v, err
	}
	defer closer()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("decode JSON: %w", err)
	}
	if dec.More() {
		return v, fmt.Errorf("decode JSON: expected a single document")
	}

	if val, ok := any(v).(Validator); ok {
		if err := val.Validate(); err != nil {
			return v, err
		}
	}
	return v, nil
}

func (in *Input[T]) open() (io.Reader, func(), error) {
	if in.path != "" {
		f, err := os.Open(in.path)
		if err != nil {
			return nil, nil, fmt.Errorf("open file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}

	if in.Stdin != nil {
		return in.Stdin, func() {}, nil
	}
	interactive := in.Interactive
	if interactive == nil {
		interactive = StdinIsTerminal
	}
	if interactive() {
		return nil, nil, ErrNoInput
	}
	return os.Stdin, func() {}, nil
}

// StdinIsTerminal reports whether stdin is attached to a TTY.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
