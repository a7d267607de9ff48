// Package ui provides the terminal interface for shelf.
//
// # Architecture
//
// The UI is a single Bubble Tea Model. It never mutates catalog state itself:
// every action runs a state.Store operation inside a tea.Cmd, and the model
// re-reads state.Store.Snapshot whenever the store signals a change through its
// Subscribe channel. Operation results come back as opResultMsg values that
// only drive the status line.
//
// # Files
//
//   - model.go: Model, messages, key handling and the commands that call the store
//   - view.go: header, product table, status line and overlays
//   - form.go: create/edit form built from bubbles textinput fields
//   - keys.go: key bindings (bubbles key)
//   - theme.go, style_helpers.go: Lipgloss themes and background-safe rendering
//   - run.go: Options and Run
//
// # Key Bindings
//
//   - j/k, g/G, ctrl+f/ctrl+b: move the selection
//   - r: refresh the current category
//   - f / F: next category / all categories (persisted to prefs)
//   - n: new product, e or enter: edit selected, d: delete selected (asks first)
//   - T: cycle theme (persisted to prefs)
//   - h/?: help, q or ctrl+c: quit
//
// # Status
//
// The header shows the applied category, product count and whether a fetch is
// in flight. After two consecutive failed fetches it shows the error class
// instead. The status line shows the outcome of the last action, then the
// store's last error, then key hints.
package ui
