package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedResult = errors.New("malformed result: exactly one of Ok or Err must be set")

// Result is the registry's wire sum type. Exactly one of Ok or Err is encoded.
type Result[T any] struct {
	ok    T
	err   string
	isErr bool
	set   bool
}

func Ok[T any](value T) Result[T] {
	return Result[T]{ok: value, set: true}
}

func Err[T any](reason string) Result[T] {
	return Result[T]{err: reason, isErr: true, set: true}
}

func (r Result[T]) IsOk() bool {
	return r.set && !r.isErr
}

func (r Result[T]) IsErr() bool {
	return r.set && r.isErr
}

// Reason returns the Err payload, or an empty string for an Ok result.
func (r Result[T]) Reason() string {
	return r.err
}

// Unwrap returns the Ok payload or a *ResultError carrying the Err reason.
func (r Result[T]) Unwrap() (T, error) {
	var zero T
	if !r.set {
		return zero, ErrMalformedResult
	}
	if r.isErr {
		return zero, &ResultError{Reason: r.err}
	}
	return r.ok, nil
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.set {
		return nil, ErrMalformedResult
	}
	if r.isErr {
		return json.Marshal(struct {
			Err string `json:"Err"`
		}{Err: r.err})
	}
	return json.Marshal(struct {
		Ok T `json:"Ok"`
	}{Ok: r.ok})
}

func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	if len(record) != 1 {
		return ErrMalformedResult
	}
	if raw, ok := record["Ok"]; ok {
		var value T
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		*r = Ok(value)
		return nil
	}
	if raw, ok := record["Err"]; ok {
		var reason string
		if err := json.Unmarshal(raw, &reason); err != nil {
			return err
		}
		*r = Err[T](reason)
		return nil
	}
	return ErrMalformedResult
}

type ResultError struct {
	Reason string
}

func (e *ResultError) Error() string {
	return e.Reason
}
