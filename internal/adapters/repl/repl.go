package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/carlosf02/acg-propack/internal/adapters/cli"
	"github.com/carlosf02/acg-propack/internal/app"
	"github.com/carlosf02/acg-propack/internal/core"
)

// Run starts the interactive loop. Each line is one wrctl command (a leading
// slash is accepted); rejections are printed and the loop continues.
// Returns when in is exhausted or the user types exit.
func Run(ctx context.Context, svc app.ApplicationService, actor *core.Actor, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "ProPack inventory shell")
	fmt.Fprintf(out, "Acting as %s (id %d). Type help for commands, exit to quit.\n", actor.Username, actor.ID)
	fmt.Fprintln(out, strings.Repeat("-", 70))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		tokens := strings.Fields(strings.TrimPrefix(strings.TrimSpace(scanner.Text()), "/"))
		if len(tokens) == 0 {
			continue
		}

		switch strings.ToLower(tokens[0]) {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(out, cli.Usage())
			continue
		}

		if err := cli.Run(ctx, svc, actor, tokens, out); err != nil {
			printError(out, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printError(out io.Writer, err error) {
	if kind := core.KindOf(err); kind != nil {
		fmt.Fprintf(out, "Rejected (%s): %v\n", kind, err)
		return
	}
	if errors.Is(err, cli.ErrUsage) {
		fmt.Fprintf(out, "%v\n", err)
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}
