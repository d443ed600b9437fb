package main

import (
	"fmt"

	echoapi "github.com/mehy12/edumate/apps/api/echo"
	"github.com/mehy12/edumate/core"
)

// token prints a bearer token for `id`, for local development against the API.
func (cli *commandLine) token(id core.Identity) error {
	token, err := echoapi.GenerateToken(cli.conf, echoapi.GetUserClaims(cli.conf, id))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, token)
	return nil
}
