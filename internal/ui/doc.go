// Package ui implements an interactive catalog browser using bubbletea's Elm architecture.
//
// The TUI moves through three views:
//  1. [SearchView] : type a query
//  2. [ResultsView] : browse and filter the matched objects
//  3. [DetailView] : inspect one object; albums and playlists list their tracks
//
// [Model] implements the standard Init/Update/View pattern. API calls run as [tea.Cmd] functions and report
// back with typed messages. Keyboard navigation uses vim-style bindings with contextual help from
// charmbracelet/bubbles/help.
package ui
