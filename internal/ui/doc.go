// Package ui implements the migration wizard as a terminal interface using bubbletea's Elm architecture.
//
// The [Model] renders whatever [wizard.Screen] is current:
//  1. Loading : spinner while the engine reads the legacy store
//  2. Welcome : avatar and the list of sites being moved
//  3. Notifications : notice that notifications now come from the new app
//  4. Done : final screen, enter finishes the flow
//  5. Error : retry or ask for help
//
// Screens and one-shot events arrive over the wizard's channels, each read by a tea.Cmd that re-arms itself after every message.
// Engine progress can also be fed in through a channel and is shown under the busy spinner.
//
// Keyboard bindings (enter, h, r, R, q) are shown per screen with charmbracelet/bubbles/help.
package ui
