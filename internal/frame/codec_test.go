package frame

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode_WireLayout(t *testing.T) {
	var buf bytes.Buffer

	err := Encode(&buf, Frame{Signal: SwitchNetworkPath, Payload: []string{"ab"}})
	require.NoError(t, err)

	want := []byte{
		16, 0, 0, 0, // signal
		2, 0, 0, 0, // two UTF-16 units
		'a', 0, 'b', 0,
	}
	require.Equal(t, want, buf.Bytes())
}

func TestWriteString_CountsCodeUnits(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		units int
	}{
		{name: "empty", text: "", units: 0},
		{name: "ascii", text: "div by zero", units: 11},
		{name: "latin-1", text: "Montréal", units: 8},
		{name: "astral rune uses a surrogate pair", text: "🚗", units: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteString(&buf, tt.text))

			require.Len(t, buf.Bytes(), 4+2*tt.units)
			require.Equal(t, byte(tt.units), buf.Bytes()[0])

			got, err := ReadString(&buf)
			require.NoError(t, err)
			require.Equal(t, tt.text, got)
		})
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	frames := []Frame{
		{Signal: Start},
		{Signal: Termination},
		{Signal: RunComplete},
		{Signal: RunCompleteWithParameter},
		{Signal: CheckToolExists},
		{Signal: RuntimeError, Payload: []string{"ZeroDivisionError: division by zero\n  File 'tool.py', line 3"}},
		{Signal: SentPrintMessage, Payload: []string{"progress..."}},
		{Signal: SwitchNetworkPath, Payload: []string{`C:\models\Frabitztown.ang`}},
		{Signal: SaveNetwork, Payload: []string{"/tmp/out/network.ang"}},
		{Signal: StartModuleWithParameters, Payload: []string{"inputOutput/importNetwork.py", `{"ModelDirectory":"x"}`}},
		{Signal: StartModuleWithParameters, Payload: []string{"assignment/roadAssignment.py", ""}},
		{Signal: Signal(99)},
	}

	for _, f := range frames {
		t.Run(f.Signal.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, f))

			got, err := Decode(&buf)
			require.NoError(t, err)
			require.Equal(t, f, got)
			require.Zero(t, buf.Len(), "decode must consume exactly one frame")
		})
	}
}

func TestDecode_BackToBackFrames(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Encode(&buf, Frame{Signal: SentPrintMessage, Payload: []string{"one"}}))
	require.NoError(t, Encode(&buf, Frame{Signal: SentPrintMessage, Payload: []string{"two"}}))
	require.NoError(t, Encode(&buf, Frame{Signal: RunComplete}))

	var printed []string

	for {
		f, err := Decode(&buf)
		require.NoError(t, err)

		if f.Signal == RunComplete {
			break
		}

		printed = append(printed, f.Payload[0])
	}

	require.Equal(t, []string{"one", "two"}, printed)
}

func TestReadSignal_EndOfStream(t *testing.T) {
	_, err := ReadSignal(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)

	_, err = ReadSignal(bytes.NewReader([]byte{3, 0}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadString_InvalidLength(t *testing.T) {
	for _, prefix := range [][]byte{
		{0xff, 0xff, 0xff, 0xff}, // -1
		{0x00, 0x00, 0x00, 0x7f}, // far above MaxStringUnits
	} {
		_, err := ReadString(bytes.NewReader(prefix))
		require.ErrorIs(t, err, ErrInvalidLength)
	}
}

func TestReadString_TruncatedBody(t *testing.T) {
	_, err := ReadString(bytes.NewReader([]byte{4, 0, 0, 0, 'a', 0}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestEncode_FlushesBufferedWriter(t *testing.T) {
	var sink bytes.Buffer

	w := bufio.NewWriterSize(&sink, 4096)

	require.NoError(t, WriteSignal(w, Termination))
	require.Equal(t, []byte{1, 0, 0, 0}, sink.Bytes(), "signal must not stay buffered")

	require.NoError(t, WriteString(w, "x"))
	require.Equal(t, 4+4+2, sink.Len())
}

func TestSignal_String(t *testing.T) {
	require.Equal(t, "RunComplete", RunComplete.String())
	require.Equal(t, "StartModuleWithParameters", StartModuleWithParameters.String())
	require.Equal(t, "Signal(99)", Signal(99).String())
}

func TestSignal_Known(t *testing.T) {
	require.True(t, ProgressReport.Known())
	require.True(t, IncompatibleTool.Known())
	require.False(t, Signal(2).Known(), "retired StartModule code is not part of the protocol")
	require.False(t, Signal(99).Known())
}

func TestSignal_PayloadCount(t *testing.T) {
	require.Equal(t, 2, StartModuleWithParameters.PayloadCount())
	require.Equal(t, 1, RuntimeError.PayloadCount())
	require.Equal(t, 1, SentPrintMessage.PayloadCount())
	require.Equal(t, 0, ParameterError.PayloadCount())
	require.Equal(t, 0, ProgressReport.PayloadCount())
	require.Equal(t, 0, Signal(42).PayloadCount())
}
