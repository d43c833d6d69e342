package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Lists(ctx context.Context) error
	AddList(ctx context.Context) error
	Tasks(ctx context.Context) error
	AddTask(ctx context.Context) error
	Done(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches it to a. The
// loop ends on EOF or on "exit"/"quit".
//
//	Not logged in: help, signup, login, exit
//	Logged in:     help, lists, addlist, tasks, addtask, done, logout, exit
//
// Errors returned by the commands are ignored here; the commands report them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("tl%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd := parts[0]

		if !a.isLoggedIn() && loggedInOnly[cmd] {
			printlnFn("Please signup or login first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: lists, addlist, tasks, addtask, done, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, exit")
			}

		case "signup":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "lists":
			_ = a.Lists(ctx)

		case "addlist":
			_ = a.AddList(ctx)

		case "tasks":
			_ = a.Tasks(ctx)

		case "addtask":
			_ = a.AddTask(ctx)

		case "done":
			_ = a.Done(ctx)

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

var loggedInOnly = map[string]bool{
	"logout": true, "l": true, "lists": true, "addlist": true,
	"tasks": true, "addtask": true, "done": true,
}
