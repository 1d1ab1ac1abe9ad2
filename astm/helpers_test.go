package astm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// wireFrame is one frame taken apart again, for assertions only.
type wireFrame struct {
	number   string
	content  []byte
	term     byte
	checksum string
}

// parseOutput splits a rendered transmission into frames. It assumes frame numbers
// are single digits when withNumbers is set and that content holds no ETX/ETB.
func parseOutput(t *testing.T, out []byte, withNumbers bool) []wireFrame {
	t.Helper()

	require.GreaterOrEqual(t, len(out), 3, "transmission too short")
	require.Equal(t, []byte{EOT, ENQ}, out[:2], "missing EOT ENQ lead-in")
	require.Equal(t, EOT, out[len(out)-1], "missing trailing EOT")

	body := out[2 : len(out)-1]
	var frames []wireFrame

	for len(body) > 0 {
		require.Equal(t, STX, body[0], "frame must start with STX")

		end := bytes.IndexAny(body, string([]byte{ETX, ETB}))
		require.Positive(t, end, "frame terminator not found")
		require.GreaterOrEqual(t, len(body), end+5, "frame trailer truncated")
		require.Equal(t, []byte{CR, LF}, body[end+3:end+5], "frame must end with CR LF")

		f := wireFrame{
			term:     body[end],
			checksum: string(body[end+1 : end+3]),
		}
		content := body[1:end]
		if withNumbers {
			f.number = string(content[:1])
			content = content[1:]
		}
		f.content = content
		frames = append(frames, f)

		body = body[end+5:]
	}

	return frames
}
