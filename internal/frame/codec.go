package frame

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// MaxStringUnits bounds the UTF-16 length accepted by ReadString.
const MaxStringUnits = 32 << 20

// ErrInvalidLength is returned when a string length prefix is negative or too large.
var ErrInvalidLength = stderrors.New("invalid string length")

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Frame is one signal plus the strings that travel with it.
type Frame struct {
	Signal  Signal
	Payload []string
}

// flusher is implemented by buffered writers. Every frame is flushed so
// that a partial frame never sits in a buffer.
type flusher interface {
	Flush() error
}

// WriteSignal writes a bare signal.
func WriteSignal(w io.Writer, s Signal) error {
	return write(w, appendInt32(nil, int32(s)))
}

// WriteString writes a length-prefixed UTF-16 string.
func WriteString(w io.Writer, text string) error {
	buf, err := appendString(nil, text)
	if err != nil {
		return err
	}

	return write(w, buf)
}

// Encode writes f as a single write followed by a flush.
func Encode(w io.Writer, f Frame) error {
	buf := appendInt32(nil, int32(f.Signal))

	for _, text := range f.Payload {
		var err error

		buf, err = appendString(buf, text)
		if err != nil {
			return err
		}
	}

	return write(w, buf)
}

// ReadSignal reads one signal tag.
func ReadSignal(r io.Reader) (Signal, error) {
	v, err := readInt32(r)

	return Signal(v), err
}

// ReadString reads a length-prefixed UTF-16 string.
func ReadString(r io.Reader) (string, error) {
	n, err := readInt32(r)
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}

	if n < 0 || n > MaxStringUnits {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	if n == 0 {
		return "", nil
	}

	raw := make([]byte, 2*int(n))
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", fmt.Errorf("read string body: %w", err)
	}

	text, err := utf16LE.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode utf-16: %w", err)
	}

	return string(text), nil
}

// Decode reads a signal and the payload strings that signal carries.
func Decode(r io.Reader) (Frame, error) {
	s, err := ReadSignal(r)
	if err != nil {
		return Frame{}, err
	}

	f := Frame{Signal: s}

	for range s.PayloadCount() {
		text, err := ReadString(r)
		if err != nil {
			return Frame{}, fmt.Errorf("read %s payload: %w", s, err)
		}

		f.Payload = append(f.Payload, text)
	}

	return f, nil
}

func write(w io.Writer, buf []byte) error {
	if _, err := w.Write(buf); err != nil {
		return err
	}

	if f, ok := w.(flusher); ok {
		return f.Flush()
	}

	return nil
}

func appendInt32(buf []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(buf, uint32(v))
}

func appendString(buf []byte, text string) ([]byte, error) {
	units, err := utf16LE.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode utf-16: %w", err)
	}

	buf = appendInt32(buf, int32(len(units)/2))

	return append(buf, units...), nil
}

func readInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return int32(binary.LittleEndian.Uint32(b[:])), nil
}
