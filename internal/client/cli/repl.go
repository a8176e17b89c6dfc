package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Whoami(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Create(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a. It stops on
// EOF or "exit"/"quit". Command errors are printed and the loop continues.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, whoami, list [page], create, show <id>,
//	               rename <id>, delete <id>, import <file>, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, (l)ist [page], create, show <id>, rename <id>, delete <id>, import <file>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "whoami", "l", "list", "create", "show", "rename", "delete", "import", "logout":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			err = dispatchAuthed(ctx, a, cmd, args)

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatchAuthed(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "whoami":
		return a.Whoami(ctx)
	case "l", "list":
		return a.List(ctx, args)
	case "create":
		return a.Create(ctx)
	case "show":
		return a.Show(ctx, args)
	case "rename":
		return a.Rename(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "import":
		return a.Import(ctx, args)
	default:
		return a.Logout(ctx)
	}
}
