package flagx

import (
	"flag"
	"io"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-c"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag (no value)",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "server flags mixed with go test flags",
			args:         []string{"-test.v=true", "-a", ":8000", "-env", "production", "-test.run", "X"},
			allowedFlags: []string{"-a", "-env"},
			want:         []string{"-a", ":8000", "-env", "production"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "repeated allowed flag is preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", ConfigPath())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", ConfigPath())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, ConfigPath())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", ConfigPath())
	})
}

func newSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDurationVar(t *testing.T) {
	t.Run("explicit value is scaled by unit", func(t *testing.T) {
		d := 30 * time.Second
		fs := newSet()
		DurationVar(fs, &d, "t", time.Minute, "")

		require.NoError(t, fs.Parse([]string{"-t", "15"}))
		assert.Equal(t, 15*time.Minute, d)
	})

	t.Run("absent flag leaves destination untouched", func(t *testing.T) {
		d := 30 * time.Second
		fs := newSet()
		DurationVar(fs, &d, "t", time.Minute, "")

		require.NoError(t, fs.Parse(nil))
		assert.Equal(t, 30*time.Second, d)
	})

	t.Run("non integer is rejected", func(t *testing.T) {
		var d time.Duration
		fs := newSet()
		DurationVar(fs, &d, "t", time.Minute, "")

		assert.Error(t, fs.Parse([]string{"-t", "soon"}))
	})

	t.Run("negative is rejected", func(t *testing.T) {
		var d time.Duration
		fs := newSet()
		DurationVar(fs, &d, "i", time.Second, "")

		assert.Error(t, fs.Parse([]string{"-i=-3"}))
	})
}
