package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Page(ctx context.Context, args []string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Filter(ctx context.Context, args []string) error
	Unfilter(ctx context.Context, args []string) error
	Filters(ctx context.Context) error
	Refresh(ctx context.Context) error
	Create(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, whoami, page [n], next, prev, stats, exit"
	helpSignedIn  = "Available commands: page [n], next, prev, filter <col> <value>, unfilter [col], filters, refresh, create, edit <id>, delete <id>, export [file <path>|s3], whoami, stats, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
//
// The prompt shows the status returned by statusFn. The loop ends on EOF,
// on "exit" or "quit", or when ctx is done. Command handlers report their
// own failures to the user, so their errors are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("leads %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "page", "p":
			_ = a.Page(ctx, args)

		case "next", "n":
			_ = a.Next(ctx)

		case "prev":
			_ = a.Prev(ctx)

		case "filter":
			if len(args) < 2 {
				printlnFn("Usage: filter <column> <value>")
				continue
			}
			_ = a.Filter(ctx, args)

		case "unfilter":
			_ = a.Unfilter(ctx, args)

		case "filters":
			_ = a.Filters(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "create":
			_ = a.Create(ctx)

		case "edit":
			if len(args) != 1 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.Edit(ctx, args)

		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.Delete(ctx, args)

		case "export":
			_ = a.Export(ctx, args)

		case "stats":
			_ = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
