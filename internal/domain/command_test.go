package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"hello world", Command{Kind: CommandMessage, Arg: "hello world"}},
		{"/help", Command{Kind: CommandHelp}},
		{"/name bob", Command{Kind: CommandName, Arg: "bob"}},
		{"/rooms", Command{Kind: CommandRooms}},
		{"/join  music ", Command{Kind: CommandJoin, Arg: "music"}},
		{"/users", Command{Kind: CommandUsers}},
		{"/nudge alice", Command{Kind: CommandNudge, Arg: "alice"}},
		{"/file cat.png aGk=", Command{Kind: CommandFile, File: FilePayload{Name: "cat.png", Contents: "aGk="}}},
		{"/quit\n", Command{Kind: CommandQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"/name", ErrMissingArg},
		{"/join", ErrMissingArg},
		{"/nudge", ErrMissingArg},
		{"/file cat.png", ErrMissingArg},
		{"/shout hi", ErrUnknownCommand},
		{"/", ErrUnknownCommand},
		{"   ", ErrMissingArg},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseCommand(tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCommandStringRoundTrips(t *testing.T) {
	cmds := []Command{
		{Kind: CommandMessage, Arg: "hi"},
		{Kind: CommandHelp},
		{Kind: CommandName, Arg: "bob"},
		{Kind: CommandRooms},
		{Kind: CommandJoin, Arg: "go"},
		{Kind: CommandUsers},
		{Kind: CommandNudge, Arg: "al"},
		{Kind: CommandFile, File: FilePayload{Name: "a.md", Contents: "eA=="}},
		{Kind: CommandQuit},
	}

	for _, cmd := range cmds {
		require.NoError(t, cmd.Validate())
		back, err := ParseCommand(cmd.String())
		require.NoError(t, err)
		assert.Equal(t, cmd, back)
	}
}

func TestCommandValidate(t *testing.T) {
	bad := []Command{
		{Kind: CommandMessage, Arg: ""},
		{Kind: CommandMessage, Arg: "/notacommand"},
		{Kind: CommandMessage, Arg: "two\nlines"},
		{Kind: CommandName, Arg: "two words"},
		{Kind: CommandJoin},
		{Kind: CommandFile, File: FilePayload{Name: "my file.md", Contents: "eA=="}},
		{Kind: CommandKind(99)},
	}

	for _, cmd := range bad {
		assert.Error(t, cmd.Validate(), "%+v", cmd)
	}
}

func TestCommandsListed(t *testing.T) {
	require.NotEmpty(t, Commands)
	assert.Equal(t, "/help", Commands[0].Usage)
}
