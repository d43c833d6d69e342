package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/tasklist/internal/client/client"
	"github.com/dmitrijs2005/tasklist/internal/client/config"
)

type App struct {
	config *config.Config
	client client.Client
	email  string
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to tasklist CLI (type 'help' for commands)")

	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Server %s is not reachable: %v\n", a.config.ServerURL, err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if a.isLoggedIn() && a.email != "" {
		return "(" + a.email + ")"
	}
	return ""
}

// report prints err for the user and returns it. A lost session also clears
// the prompt.
func (a *App) report(err error) error {
	if errors.Is(err, client.ErrSessionExpired) {
		a.email = ""
	}
	fmt.Fprintln(a.out, "Error:", err)
	return err
}
