// Package ui contains the Bubble Tea program that renders the dashboard.
// The Model type focuses on message orchestration, while dedicated helpers own
// key routing, rendering, and redraw scheduling.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function.
//   - Key presses are checked against the quit and pane bindings first. Every
//     other key is translated into an internal/ui/state.Input and delegated to
//     the collection shown by the focused pane (input.go).
//   - A tickMsg arrives every refresh interval and causes a redraw, so updates
//     written by the background aggregator become visible without any input.
//     When the aggregator stops, backendDoneMsg ends the program.
//
// State ownership:
//   - The service categories and the per-category instance collections live in
//     internal/state stores shared with the aggregator. The model only changes
//     their cursor and filter state, one store lock at a time.
//   - View copies what it draws while holding each lock and renders from that
//     copy, so no lock is held while strings are built.
//   - Logging happens after a store lock is released, based on the transition
//     the collection reported.
package ui
