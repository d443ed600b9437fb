package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/mehy12/edumate/core"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
	db   dbOpener
	in   io.Reader
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) on the embedded migrations")
	_, _ = fmt.Fprintln(cli.out, "  estimate -topic TOPIC [-speed slow|normal|fast] [-classes N] - print the class estimate and session plan")
	_, _ = fmt.Fprintln(cli.out, "  token -user ID [-email EMAIL] [-username USERNAME] - print a signed API token")
}

// inIsTerminal reports whether the CLI input is an interactive terminal.
// Input that is not an *os.File is always read as piped input.
func (cli *commandLine) inIsTerminal() bool {
	f, ok := cli.in.(*os.File)
	return ok && isTerminalFunc(int(f.Fd()))
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	estimateCmd := cli.newFlagSet("estimate")
	estimateTopic := estimateCmd.String("topic", "", "The topic to learn. Read from stdin when omitted and stdin is not a terminal.")
	estimateSpeed := estimateCmd.String("speed", "normal", "The learning speed: slow, normal or fast.")
	estimateClasses := estimateCmd.Int("classes", 0, "Plan this many classes instead of the estimate.")

	tokenCmd := cli.newFlagSet("token")
	tokenUser := tokenCmd.String("user", "", "The user ID (token subject).")
	tokenEmail := tokenCmd.String("email", "", "The user's email, used for class reminders.")
	tokenUsername := tokenCmd.String("username", "", "The user's username.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "estimate":
		if err := cli.parse(estimateCmd, args[2:]); err != nil {
			return err
		}
		topic := *estimateTopic
		if topic == "" && !cli.inIsTerminal() {
			b, err := io.ReadAll(cli.in)
			if err != nil {
				return err
			}
			topic = string(b)
		}
		if core.CleanString(topic) == "" {
			estimateCmd.Usage()
			return errHelp
		}
		return cli.estimate(topic, *estimateSpeed, *estimateClasses)
	case "token":
		if err := cli.parse(tokenCmd, args[2:]); err != nil {
			return err
		}
		if *tokenUser == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(core.Identity{ID: *tokenUser, Email: *tokenEmail, Username: *tokenUsername})
	default:
		cli.printUsage()
		return errHelp
	}
}
