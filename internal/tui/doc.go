// Package tui renders the live "my orders" view in the terminal.
//
// The Model is a bubbletea program driven by two channels: the orders view
// signals after every applied poll, and the Notifier delivers status
// changes picked up by the transition dispatcher. Neither blocks the
// poller; a slow terminal only ever sees the latest state.
package tui
