package main

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-astm/transport"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out, _, err := executeWithStderr(t, args...)

	return out, err
}

func executeWithStderr(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()

	return out.String(), errOut.String(), err
}

// startSink accepts one connection and collects everything written to it.
func startSink(t *testing.T) (port int, received func() string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	done := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			done <- ""
			return
		}
		defer conn.Close()

		data, _ := io.ReadAll(conn)
		done <- string(data)
	}()

	return ln.Addr().(*net.TCPAddr).Port, func() string { return <-done }
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "astmsim dev\n"))
}

func TestProfiles(t *testing.T) {
	out, err := execute(t, "profiles")
	require.NoError(t, err)
	assert.Equal(t, "astm-results\nhl7-admit\nhl7-merge\nhl7-bedswap\n", out)
}

func TestRender(t *testing.T) {
	t.Run("astm", func(t *testing.T) {
		out, err := execute(t, "render")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, `<4><5><2>1H|\^&|||^^11223344|||||IDMS||P|1|`), out)
		assert.True(t, strings.HasSuffix(out, "<4>\n"), out)
	})

	t.Run("astm without frame numbers", func(t *testing.T) {
		out, err := execute(t, "render", "--no-seq")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, `<4><5><2>H|`), out)
	})

	t.Run("astm split", func(t *testing.T) {
		out, err := execute(t, "render", "--frame-size", "20")
		require.NoError(t, err)
		assert.Contains(t, out, "<17>")
		assert.Contains(t, out, "<2>2")
	})

	t.Run("negative frame size disables splitting", func(t *testing.T) {
		out, err := execute(t, "render", "--frame-size=-1")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, `<4><5><2>1H|`), out)
		assert.NotContains(t, out, "<17>")
	})

	t.Run("hl7", func(t *testing.T) {
		out, err := execute(t, "render", "--profile", "hl7-admit", "--patient", "1001")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "<B>MSH|"), out)
		assert.Contains(t, out, "1001")
		assert.True(t, strings.HasSuffix(out, "<1C><D>\n"), out)
	})

	t.Run("raw", func(t *testing.T) {
		out, err := execute(t, "render", "--raw")
		require.NoError(t, err)
		require.NotEmpty(t, out)
		assert.Equal(t, byte(0x04), out[0])
		assert.Equal(t, byte(0x04), out[len(out)-1])
	})

	t.Run("framing flags on hl7 warn", func(t *testing.T) {
		out, errOut, err := executeWithStderr(t, "render", "--profile", "hl7-admit", "--frame-size", "40")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "<B>MSH|"), out)
		assert.Contains(t, errOut, "flag has no effect on HL7 profiles")
		assert.Contains(t, errOut, "frame-size")
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := execute(t, "render", "--profile", "hl7-discharge")
		require.ErrorContains(t, err, "send.profile")
	})
}

func TestSend_TCP(t *testing.T) {
	port, received := startSink(t)

	out, err := execute(t, "send", "--host", "127.0.0.1", "--port", strconv.Itoa(port),
		"--count", "2", "--reply-timeout", "50ms", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "sent=2 replies=0")
	assert.Contains(t, out, "rx_bytes=0")
	assert.NotContains(t, out, "tx_bytes=0 ")

	data := received()
	assert.Equal(t, 2, strings.Count(data, "L|1|N"))
	assert.True(t, strings.HasPrefix(data, "\x04\x05\x021H|"))
}

func TestSend_ConfigFile(t *testing.T) {
	port, received := startSink(t)

	path := filepath.Join(t.TempDir(), "sim.yaml")
	content := "transport: {reply_timeout: 50ms}\n" +
		"send: {profile: hl7-bedswap}\n" +
		"targets:\n  - {name: adt, host: 127.0.0.1, port: " + strconv.Itoa(port) + "}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out, err := execute(t, "send", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "adt")
	assert.Contains(t, out, "sent=1")

	data := received()
	assert.True(t, strings.HasPrefix(data, "\x0bMSH|"))
	assert.Contains(t, data, "A17")
}

func TestSend_Errors(t *testing.T) {
	_, err := execute(t, "send")
	require.ErrorContains(t, err, "no targets")

	_, err = execute(t, "send", "--port", "4000")
	require.ErrorContains(t, err, "host is required")

	_, err = execute(t, "send", "--host", "127.0.0.1", "--port", "4000", "--baud", "19200")
	require.ErrorContains(t, err, "--baud requires --serial")

	// nothing listens on a freshly closed port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	out, err := execute(t, "send", "--host", "127.0.0.1", "--port", strconv.Itoa(port), "--quiet")
	require.ErrorIs(t, err, transport.ErrTransport)
	assert.Contains(t, out, "sent=0")
}
