package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Result is a structured audit result produced upstream.
// It holds arbitrary nested map[string]any, []any and scalar values.
type Result = any

var (
	// ErrEmptyResult is returned when the input contains no JSON value.
	ErrEmptyResult = errors.New("empty result: input contains no JSON value")

	// ErrTrailingData is returned when the input has data after the first JSON value.
	ErrTrailingData = errors.New("invalid result: unexpected data after JSON value")
)

// DecodeResult reads exactly one JSON value from r.
//
// Numbers are decoded as json.Number so that integers larger than 2^53 and
// the original textual form of floats survive a decode/encode round-trip.
func DecodeResult(r io.Reader) (Result, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var result Result
	if err := dec.Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyResult
		}
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}

	return result, nil
}

// DecodeResultBytes is DecodeResult for an in-memory document.
func DecodeResultBytes(data []byte) (Result, error) {
	return DecodeResult(bytes.NewReader(data))
}

// LoadResultFile reads and decodes a result from the file at path.
func LoadResultFile(path string) (Result, error) {
	f, err := os.Open(path) //nolint:gosec // Reading user-provided result files is intentional
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result, err := DecodeResult(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}
