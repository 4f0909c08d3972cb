// Package core provides the view-state engine for the agrifood dashboard.
//
// The package has no rendering or transport dependencies. Web handlers, the
// CLI and tests drive it the same way.
//
// # Model
//
//   - [RecordStore]: the dataset, loaded once and never modified.
//   - [Filter]: the active category set and the search term.
//   - [View]: the filtered records in display order, as indices into the store.
//   - [State]: filter, view, view mode and last sort column.
//
// # Transitions
//
// Every user intent is an [Action]. [Engine.Reduce] maps a state and an action
// to the next state plus the [Effects] (render steps) it requires, without
// touching the input:
//
//	next, fx, err := engine.Reduce(state, core.ToggleCategory{Category: "Breweries"})
//
// A [Controller] holds the current state for one dashboard, serializes
// actions, and invokes the [MapRenderer], [TableRenderer] and [StatsRenderer]
// named by the effects.
//
// # Filtering and sorting
//
// The view keeps records whose category is active and, when a search term is
// set, whose name, address or borough contains it (case-insensitive, NFC
// normalized). Changing the filter rebuilds the view in dataset order.
//
// [Sorter] orders numeric columns descending and text columns ascending by
// locale collation. Unknown columns return [ErrUnknownField].
package core
