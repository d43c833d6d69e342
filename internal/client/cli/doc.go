// Package cli implements the interactive tasklist command-line client: a
// small REPL over client.Client with prompts for credentials, lists and
// tasks. Passwords are read without echo.
package cli
