// atongani is the command-line client of the AtongAni farmers' market.
//
// It keeps the session token on disk (or in Redis), talks to the
// marketplace backend on behalf of the logged-in user, and offers two
// live views of the customer's orders: a terminal UI (orders --watch) and
// a local web console (serve).
//
// @title        AtongAni console
// @version      1.0
// @description  Local web console for the AtongAni farmers' market client.
// @host         localhost:8080
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/atongani/market-client/internal/infrastructure/config"
	"github.com/atongani/market-client/pkg/logger"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitNoSession = 2
)

// exitError carries the process exit code and the message shown to the user.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func exitErr(code int, msg string) error {
	return &exitError{code: code, msg: msg}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
	// interactive commands own the terminal; logs must not go to stderr.
	interactive func(args []string) bool
}

var commands = []command{
	{name: "login", summary: "log in and store the session token", run: runLogin},
	{name: "register", summary: "create a customer or farmer account and log in", run: runRegister},
	{name: "logout", summary: "forget the stored session", run: runLogout},
	{name: "whoami", summary: "show the user behind the stored session", run: runWhoAmI},
	{name: "status", summary: "show session and backend status without logging in", run: runStatus},
	{name: "orders", summary: "list your orders (--watch for the live view)", run: runOrders, interactive: watchRequested},
	{name: "pending", summary: "list orders awaiting your approval (farmers)", run: runPending},
	{name: "order", summary: "show one order", run: runOrder},
	{name: "checkout", summary: "place an order from your cart (customers)", run: runCheckout},
	{name: "approve", summary: "approve an order (farmers)", run: runApprove},
	{name: "reject", summary: "reject an order with a reason (farmers)", run: runReject},
	{name: "serve", summary: "run the local web console", run: runServe},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	if err == nil {
		os.Exit(exitOK)
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(os.Stderr, ee.msg)
		}
		os.Exit(ee.code)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(exitFailure)
}

// globalFlags come before the command name and override the environment.
type globalFlags struct {
	api            string
	sessionBackend string
}

func parseGlobal(args []string) (globalFlags, []string, error) {
	var g globalFlags
	fs := newFlagSet("atongani")
	fs.SetInterspersed(false)
	fs.StringVar(&g.api, "api", "", "backend base URL (overrides API_URL)")
	fs.StringVar(&g.sessionBackend, "session-backend", "", "file, redis or memory (overrides SESSION_BACKEND)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return g, nil, nil
		}
		return g, nil, exitErr(exitFailure, err.Error())
	}
	return g, fs.Args(), nil
}

func (g globalFlags) apply(cfg *config.Config) error {
	if g.api != "" {
		cfg.API.BaseURL = g.api
	}
	if g.sessionBackend != "" {
		cfg.Session.Backend = g.sessionBackend
	}
	return cfg.Validate()
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	global, args, err := parseGlobal(args)
	if err != nil {
		printUsage(stderr)
		return err
	}
	if len(args) == 0 || args[0] == "help" {
		printUsage(stderr)
		return nil
	}

	cmd, ok := lookup(args[0])
	if !ok {
		printUsage(stderr)
		return exitErr(exitFailure, fmt.Sprintf("unknown command %q", args[0]))
	}
	rest := args[1:]

	// A missing .env is fine; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := global.apply(cfg); err != nil {
		return err
	}

	logOut := stderr
	if cfg.LogFile != "" {
		f, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	} else if cmd.interactive != nil && cmd.interactive(rest) {
		logOut = io.Discard
	}
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: logOut,
		App:    "atongani",
	})

	a, err := newApp(ctx, cfg, log, stdout)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	a.prompt = newPrompter(stdin, stderr)

	log.Debug().Str("command", cmd.name).Str("backend", cfg.API.BaseURL).Msg("running command")
	return cmd.run(ctx, a, rest)
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseFlags parses args and turns --help and flag errors into exit errors
// carrying the usage text.
func parseFlags(fs *pflag.FlagSet, args []string, usage string) error {
	if err := fs.Parse(args); err != nil {
		msg := "usage: atongani " + usage + "\n\nFlags:\n" + fs.FlagUsages()
		if errors.Is(err, pflag.ErrHelp) {
			return exitErr(exitOK, msg)
		}
		return exitErr(exitFailure, err.Error()+"\n"+msg)
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "AtongAni farmers' market client.\n\nUsage:\n  atongani [--api url] [--session-backend file|redis|memory] <command> [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nConfiguration is read from the environment and an optional .env file.\n")
}
