/* main_test.go
 * Contains unit tests for main.go and utils.go functions
 */

package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertStrToBool(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"false", false, false},
		{"TRUE", true, false},
		{"FALSE", false, false},
		{"TrUe", true, false},
		{"  true  ", true, false},
		{"\tfalse\n", false, false},
		{"", false, true},
		{"yes", false, true},
		{"1", false, true},
	}
	for _, tt := range tests {
		got, err := convertStrToBool(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := parseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = parseLogLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	lvl, err = parseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, lvl)

	_, err = parseLogLevel("loud")
	assert.Error(t, err)
}

func TestLoadLocation(t *testing.T) {
	loc, err := loadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = loadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())

	_, err = loadLocation("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	assert.Equal(t, "bolao-bot", app.Name)
	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"serve", "bot", "create-admin"}, names)
}

func TestServeCommand_RejectsBadBotFlag(t *testing.T) {
	app := newApp()

	err := app.Run([]string{"bolao-bot", "serve", "--secret-key", "k", "--bot", "maybe"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --bot value")
}
