package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atongani/market-client/internal/api"
	"github.com/atongani/market-client/internal/api/handler"
	"github.com/atongani/market-client/internal/tui"
)

const shutdownTimeout = 10 * time.Second

// runServe starts the local web console and blocks until ctx is cancelled.
func runServe(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("serve")
	port := fs.String("port", a.cfg.Console.Port, "port to listen on")
	if err := parseFlags(fs, args, "serve [--port 8080]"); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dispatcher, repo, err := a.startDispatcher(ctx, nil)
	if err != nil {
		return err
	}

	deps := api.Deps{
		Auth:     a.auth,
		Sessions: a.session,
		Orders:   a.orders,
		NewOrdersView: func() handler.OrdersStream {
			return a.newOrdersView(dispatcher)
		},
		Backend: a.api,
		Mongo:   a.mongoDB,
		Log:     a.log,
	}
	if repo != nil {
		deps.History = repo
	}
	if a.redis != nil {
		deps.Redis = a.redis
	}
	e := api.NewRouter(deps)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", *port).Msg("console listening")
		if err := e.Start(":" + *port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		cancel()
		dispatcher.Wait()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("console shutdown failed")
	}
	cancel()
	dispatcher.Wait()
	a.log.Info().Msg("console stopped")
	return nil
}

func watchRequested(args []string) bool {
	for _, arg := range args {
		if arg == "--watch" || arg == "-w" {
			return true
		}
	}
	return false
}

// watchOrders runs the terminal view until the user quits. The poller runs
// exactly as long as the view is on screen.
func watchOrders(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	notifier := tui.NewNotifier(16)
	dispatcher, _, err := a.startDispatcher(ctx, notifier)
	if err != nil {
		return err
	}

	view := a.newOrdersView(dispatcher)
	if err := view.Start(ctx); err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewModel(view, notifier), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()

	view.Stop()
	cancel()
	dispatcher.Wait()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return nil
}
