package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstream/synchro-go/pkg/stream"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
source: /data/shelby.bin
station: shelby
chunk_size: 512
starting_offset: 44
max_attempts: -1
receive_interval: 250ms
log_level: debug
protocol_log: /tmp/shelby.slog
backoff:
  initial: 10ms
  max: 1s
  multiplier: 1.5
`)

	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/shelby.bin", p.Source)
	assert.Equal(t, "shelby", p.Station)
	assert.Equal(t, 512, p.ChunkSize)
	assert.Equal(t, int64(44), p.StartingOffset)
	assert.Equal(t, -1, p.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, p.ReceiveInterval)
	assert.Equal(t, "debug", p.LogLevel)
	assert.Equal(t, "/tmp/shelby.slog", p.ProtocolLog)
	assert.Equal(t, 10*time.Millisecond, p.Backoff.Initial)
	assert.Equal(t, time.Second, p.Backoff.Max)
	assert.Equal(t, 1.5, p.Backoff.Multiplier)
	assert.Equal(t, stream.JitterFactor, p.Backoff.Jitter, "unset fields keep defaults")
}

func TestLoadProfileKeepsDefaults(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, "source: a.bin\n"))
	require.NoError(t, err)

	want := DefaultProfile()
	want.Source = "a.bin"
	assert.Equal(t, want, p)
}

func TestLoadProfileErrors(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read profile")

	_, err = LoadProfile(writeProfile(t, "chunk_size: [1, 2]\n"))
	assert.ErrorContains(t, err, "parse profile")
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Profile)
		wantErr bool
	}{
		{"source", func(p *Profile) { p.Source = "a.bin" }, false},
		{"connection string", func(p *Profile) { p.ConnectionString = "source=a.bin" }, false},
		{"no resource", func(p *Profile) {}, true},
		{"negative interval", func(p *Profile) { p.Source = "a.bin"; p.ReceiveInterval = -time.Second }, true},
		{"bad log level", func(p *Profile) { p.Source = "a.bin"; p.LogLevel = "verbose" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			tt.modify(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeFlags(t *testing.T) {
	profile := DefaultProfile()
	profile.Source = "profile.bin"
	profile.ChunkSize = 512
	profile.ReceiveInterval = time.Second

	fromFlags := DefaultProfile()
	fromFlags.Source = "flag.bin"
	fromFlags.ChunkSize = 64
	fromFlags.Interactive = true

	mergeFlags(&profile, fromFlags, map[string]bool{"source": true, "interactive": true})

	assert.Equal(t, "flag.bin", profile.Source)
	assert.True(t, profile.Interactive)
	assert.Equal(t, 512, profile.ChunkSize, "unset flag must not override the profile")
	assert.Equal(t, time.Second, profile.ReceiveInterval)
}

func TestProfileApply(t *testing.T) {
	p := DefaultProfile()
	p.Source = "/data/a b.bin"
	p.ChunkSize = 100
	p.StartingOffset = 22
	p.MaxAttempts = 5
	p.ReceiveInterval = 2 * time.Second

	c := stream.NewClient(nil)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, p.Apply(c))

	assert.Equal(t, "source={/data/a b.bin}", c.ConnectionString())
	assert.Equal(t, 100, c.ChunkSize())
	assert.Equal(t, int64(22), c.StartingOffset())
	assert.Equal(t, 5, c.MaxConnectionAttempts())
	assert.Equal(t, 2*time.Second, c.ReceiveInterval())
	assert.False(t, c.ReceiveOnDemand())

	p.ReceiveInterval = 0
	p.ReceiveOnDemand = true
	p.ConnectionString = "file=x.bin; chunkSize=8"
	require.NoError(t, p.Apply(c))
	assert.Equal(t, "file=x.bin; chunkSize=8", c.ConnectionString())
	assert.Equal(t, stream.Continuous, c.ReceiveInterval())
	assert.True(t, c.ReceiveOnDemand())
}

func TestProfileApplyRejectsRanges(t *testing.T) {
	p := DefaultProfile()
	p.Source = "a.bin"
	p.ChunkSize = 0

	c := stream.NewClient(nil)
	t.Cleanup(func() { c.Close() })

	var rangeErr *stream.RangeError
	assert.ErrorAs(t, p.Apply(c), &rangeErr)
}
