// Package jsonutil provides a high-performance JSON encoding/decoding wrapper.
// It uses github.com/go-json-experiment/json, which is substantially faster
// than encoding/json on the result-streaming hot path.
//
// The API matches the standard library so call sites read the same:
//
//	data, err := jsonutil.Marshal(result)
//	err := jsonutil.Unmarshal(data, &profile)
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent returns the indented JSON encoding of v.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent(indent))
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}

// Encoder is a streaming encoder compatible with encoding/json.Encoder.
// It is what the JSONL writer drives: one value per line.
type Encoder struct {
	w      io.Writer
	indent string
}

// NewStreamEncoder creates an encoder that writes to w.
func NewStreamEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the JSON encoding of v to the stream, followed by a newline.
func (e *Encoder) Encode(v any) error {
	var err error
	if e.indent != "" {
		err = json.MarshalWrite(e.w, v, jsontext.WithIndent(e.indent))
	} else {
		err = json.MarshalWrite(e.w, v)
	}
	if err != nil {
		return err
	}
	_, err = e.w.Write([]byte{'\n'})
	return err
}

// SetIndent instructs the encoder to format each subsequent encoded value
// with the given indentation.
func (e *Encoder) SetIndent(prefix, indent string) {
	e.indent = indent
}

// Decoder is a streaming decoder compatible with encoding/json.Decoder.
type Decoder struct {
	r io.Reader
}

// NewStreamDecoder creates a decoder that reads from r.
func NewStreamDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the next JSON-encoded value from the stream and stores it in v.
func (d *Decoder) Decode(v any) error {
	return json.UnmarshalRead(d.r, v)
}
