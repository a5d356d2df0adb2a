package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/parley.yaml", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/parley.yaml", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseStartFlags(t *testing.T) {
	parsed, err := Parse([]string{"--minutes", "30", "--lang", "ko", "start"})
	require.NoError(t, err)
	require.Equal(t, CommandStart, parsed.Command)
	require.Equal(t, 30, parsed.Minutes)
	require.Equal(t, "ko", parsed.Language)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
		wantPath string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "version flag",
			args:     []string{"--version"},
			wantCmd:  CommandVersion,
			wantHelp: false,
		},
		{
			name:    "config after command",
			args:    []string{"status", "--config", "/tmp/cfg"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "missing minutes value",
			args:    []string{"--minutes"},
			wantErr: "requires a number",
		},
		{
			name:    "non-numeric minutes",
			args:    []string{"--minutes", "soon", "start"},
			wantErr: "positive number",
		},
		{
			name:    "negative minutes",
			args:    []string{"--minutes", "-5", "start"},
			wantErr: "positive number",
		},
		{
			name:    "minutes without start",
			args:    []string{"--minutes", "30", "status"},
			wantErr: "only apply to",
		},
		{
			name:    "lang without start",
			args:    []string{"--lang", "ko", "status"},
			wantErr: "only apply to",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:     "valid quit command",
			args:     []string{"quit"},
			wantCmd:  CommandQuit,
			wantHelp: false,
		},
		{
			name:     "valid submit with config",
			args:     []string{"--config", "/tmp/cfg", "submit"},
			wantCmd:  CommandSubmit,
			wantHelp: false,
			wantPath: "/tmp/cfg",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("parley")
	require.Contains(t, text, "start")
	require.Contains(t, text, "submit")
	require.Contains(t, text, "finish")
	require.Contains(t, text, "mic")
	require.Contains(t, text, "doctor")
	require.Contains(t, text, "--config PATH")
}
