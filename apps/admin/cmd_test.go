package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/mehy12/edumate/apps/api/echo"
	"github.com/mehy12/edumate/core/enrollment"
	"github.com/mehy12/edumate/testutil"
)

func setup(t *testing.T, stdin string) (*commandLine, *bytes.Buffer) {
	out := new(bytes.Buffer)
	return &commandLine{
		conf: testutil.NewConfig(),
		db:   func() (*sql.DB, error) { return nil, nil },
		in:   strings.NewReader(stdin),
		out:  out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t, "")
	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t, "")

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "add_class_notes", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})

	t.Run("db error", func(t *testing.T) {
		cli.db = func() (*sql.DB, error) { return nil, assert.AnError }
		assert.Equal(t, assert.AnError, cli.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_estimate(t *testing.T) {
	orig := isTerminalFunc
	t.Cleanup(func() { isTerminalFunc = orig })
	isTerminalFunc = func(fd int) bool { return true }

	cli, out := setup(t, "")
	runCLITests(t, cli, []cliTest{
		{name: "no topic", args: []string{"estimate"}, wantErr: errHelp},
		{name: "blank topic", args: []string{"estimate", "-topic", "   "}, wantErr: errHelp},
		{name: "help", args: []string{"estimate", "-h"}, wantErr: errHelp},
		{name: "negative classes", args: []string{"estimate", "-topic", "Go", "-classes", "-1"}, wantErr: enrollment.ErrInvalidClassCount},
	})

	t.Run("estimate", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "estimate", "-topic", "Introduction to Linear Algebra"}))
		assert.Equal(t, "speed: normal\nestimated classes: 1\n  0. Part 1: Introduction to Linear Algebra\n", out.String())
	})

	t.Run("classes override", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "estimate", "-topic", "Go", "-speed", "FAST", "-classes", "2"}))
		assert.Equal(t, "speed: fast\nestimated classes: 1\n  0. Part 1: Go\n  1. Part 2: Go\n", out.String())
	})

	t.Run("topic from stdin", func(t *testing.T) {
		cli, out := setup(t, testutil.Words(3000))
		require.NoError(t, cli.run([]string{"admin", "estimate", "-speed", "slow"}))
		assert.True(t, strings.HasPrefix(out.String(), "speed: slow\nestimated classes: 14\n"))
	})

	t.Run("terminal input is not read", func(t *testing.T) {
		f, err := os.CreateTemp(t.TempDir(), "stdin")
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })
		_, err = f.WriteString("Introduction to Linear Algebra")
		require.NoError(t, err)
		_, err = f.Seek(0, io.SeekStart)
		require.NoError(t, err)

		cli, out := setup(t, "")
		cli.in = f

		var checkedFd int
		isTerminalFunc = func(fd int) bool {
			checkedFd = fd
			return true
		}
		assert.Equal(t, errHelp, cli.run([]string{"admin", "estimate"}))
		assert.Equal(t, int(f.Fd()), checkedFd)

		isTerminalFunc = func(fd int) bool { return false }
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "estimate"}))
		assert.Contains(t, out.String(), "Part 1: Introduction to Linear Algebra")
	})
}

func Test_commandLine_token(t *testing.T) {
	cli, out := setup(t, "")
	runCLITests(t, cli, []cliTest{
		{name: "no user", args: []string{"token"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"token", "-lol"}, wantErrStr: "flag provided but not defined: -lol"},
	})

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "token", "-user", "u-1", "-email", "awe@test.cd"}))

	claims := new(echoapi.Claims)
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cli.conf.SecretKey), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "awe@test.cd", claims.Email)
}
