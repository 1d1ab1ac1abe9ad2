package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-astm/astm"
	"github.com/arloliu/go-astm/generator"
	"github.com/arloliu/go-astm/logger"
	"github.com/arloliu/go-astm/transport"
)

const yamlConfig = `
log:
  level: debug
encoding:
  include_lead_in_checksum: false
  max_frame_size: 240
transport:
  connect_timeout: 5s
  reply_timeout: 0s
send:
  profile: hl7-merge
  count: 10
  interval: 250ms
  reconnect: true
  facility: Lab
  primary: {id: "1001", visit: "V1"}
targets:
  - {name: lis, kind: tcp, host: 127.0.0.1, port: 4000}
  - {name: analyzer, device: /dev/ttyUSB0}
`

const tomlConfig = `
[log]
level = "warn"

[encoding]
include_sequence_numbers = false

[transport]
send_timeout = "1s"
reply_buffer_size = 4096

[send]
profile = "astm-results"
patients = 3

[[targets]]
name = "lis"
host = "lis.example.org"
port = 5000

[[targets]]
name = "com1"
kind = "serial"
device = "COM1"
baud = 19200
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_YAML(t *testing.T) {
	require := require.New(t)

	f, err := Load(writeConfig(t, "sim.yaml", yamlConfig))
	require.NoError(err)

	require.Equal(logger.DebugLevel, f.LogLevel())
	require.Equal(astm.EncodeConfig{
		IncludeLeadInChecksum:  false,
		IncludeSequenceNumbers: true,
		MaxFrameSize:           240,
	}, f.EncodeConfig())

	tcfg, err := transport.NewConfig(f.TransportOptions()...)
	require.NoError(err)
	require.Equal(5*time.Second, tcfg.ConnectTimeout())
	require.Equal(transport.DefaultSendTimeout, tcfg.SendTimeout())
	require.Zero(tcfg.ReplyTimeout())
	require.Equal(transport.DefaultReplyBufferSize, tcfg.ReplyBufferSize())

	require.Equal(generator.ProfileHL7Merge, f.Profile())
	require.Equal(10, f.Send.Count)
	require.True(f.Send.Reconnect)
	params := f.Params()
	require.Equal(1, params.Patients)
	require.Equal("Lab", params.Facility)
	require.Equal(generator.Patient{PrimaryID: "1001", VisitID: "V1"}, params.Primary)
	require.Equal(generator.Patient{}, params.Secondary)

	require.Len(f.Targets, 2)
	require.Equal(Target{Name: "lis", Kind: KindTCP, Host: "127.0.0.1", Port: 4000}, f.Targets[0])
	require.Equal(Target{Name: "analyzer", Kind: KindSerial, Device: "/dev/ttyUSB0", Baud: transport.DefaultBaudRate}, f.Targets[1])
}

func TestLoad_TOML(t *testing.T) {
	require := require.New(t)

	f, err := Load(writeConfig(t, "sim.toml", tomlConfig))
	require.NoError(err)

	require.Equal(logger.WarnLevel, f.LogLevel())
	require.Equal(astm.EncodeConfig{
		IncludeLeadInChecksum:  true,
		IncludeSequenceNumbers: false,
	}, f.EncodeConfig())

	tcfg, err := transport.NewConfig(f.TransportOptions()...)
	require.NoError(err)
	require.Equal(time.Second, tcfg.SendTimeout())
	require.Equal(4096, tcfg.ReplyBufferSize())

	require.Equal(generator.ProfileASTMResults, f.Profile())
	require.Equal(3, f.Params().Patients)
	require.Equal(1, f.Send.Count)

	require.Equal(Target{Name: "lis", Kind: KindTCP, Host: "lis.example.org", Port: 5000}, f.Targets[0])
	require.Equal(Target{Name: "com1", Kind: KindSerial, Device: "COM1", Baud: 19200}, f.Targets[1])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "sim.json", "{}"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeConfig(t, "bad.yaml", "log: [unclosed"))
	require.ErrorContains(t, err, "parse yaml")

	_, err = Load(writeConfig(t, "bad.toml", "log = = 1"))
	require.ErrorContains(t, err, "parse toml")
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"log level", "log: {level: loud}", "log.level"},
		{"duration syntax", "transport: {connect_timeout: soon}", "transport.connect_timeout"},
		{"connect timeout range", "transport: {connect_timeout: 0s}", "connect timeout must be positive"},
		{"reply timeout range", "transport: {reply_timeout: 10m}", "reply timeout"},
		{"buffer size", "transport: {reply_buffer_size: 100000}", "transport.reply_buffer_size"},
		{"profile", "send: {profile: hl7-discharge}", "send.profile"},
		{"count", "send: {count: -2}", "send.count"},
		{"interval", "send: {interval: -1s}", "send.interval"},
		{"visit without id", "send: {primary: {visit: V1}}", "send.primary.visit"},
		{"tcp host", "targets: [{kind: tcp, port: 4000}]", "targets[0] host is required"},
		{"tcp port", "targets: [{host: lis, port: 70000}]", "targets[0] port 70000"},
		{"serial device", "targets: [{kind: serial}]", "targets[0] device is required"},
		{"kind", "targets: [{kind: udp, host: lis, port: 1}]", `kind "udp" is invalid`},
		{"duplicate name", "targets: [{name: a, host: h, port: 1}, {name: a, host: h, port: 2}]", "already used"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), ".yaml")
			require.Error(t, err)
			assert.ErrorContains(t, err, "validation failed")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParse_NegativeFrameSizeDisablesSplitting(t *testing.T) {
	f, err := Parse([]byte("encoding: {max_frame_size: -1}"), ".yaml")
	require.NoError(t, err)
	assert.Zero(t, f.EncodeConfig().MaxFrameSize)
	assert.False(t, f.EncodeConfig().Splitting())

	f, err = Parse([]byte("[encoding]\nmax_frame_size = -20\n"), ".toml")
	require.NoError(t, err)
	assert.Zero(t, f.EncodeConfig().MaxFrameSize)
}

func TestParse_CollectsAllErrors(t *testing.T) {
	_, err := Parse([]byte("log: {level: loud}\nsend: {count: -1}"), ".yml")
	require.Error(t, err)
	assert.ErrorContains(t, err, "log.level")
	assert.ErrorContains(t, err, "send.count")
}

func TestDefault(t *testing.T) {
	f := Default()

	assert.Equal(t, logger.InfoLevel, f.LogLevel())
	assert.Equal(t, astm.DefaultEncodeConfig(), f.EncodeConfig())
	assert.Equal(t, generator.ProfileASTMResults, f.Profile())
	assert.Empty(t, f.Targets)

	_, err := transport.NewConfig(f.TransportOptions()...)
	assert.NoError(t, err)
}

func TestBuildTargets(t *testing.T) {
	require := require.New(t)

	f, err := Parse([]byte(tomlConfig), ".toml")
	require.NoError(err)

	targets, err := f.BuildTargets()
	require.NoError(err)
	require.Len(targets, 2)

	require.Equal("lis", targets[0].Name)
	require.Equal("tcp://lis.example.org:5000", targets[0].Device.String())
	require.IsType(&transport.TCPDevice{}, targets[0].Device)

	require.Equal("com1", targets[1].Name)
	require.Equal("serial://COM1?baud=19200", targets[1].Device.String())
	require.IsType(&transport.SerialDevice{}, targets[1].Device)
}

func TestTarget_BuildInvalid(t *testing.T) {
	dev, err := Target{Name: "x", Kind: KindTCP, Host: "bad host", Port: 1}.Build()
	require.Error(t, err)
	assert.Nil(t, dev)
}
