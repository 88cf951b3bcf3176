// submodule cmd contains command definitions
package main

import (
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/services"
)

// outputFlags select how listings are printed.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, csv, markdown or json",
			Value:   "text",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// pageFlags are the start/count/extras arguments shared by listing procedures.
func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "start",
			Usage: "Offset of the first result",
		},
		&cli.IntFlag{
			Name:  "count",
			Usage: "Maximum number of results",
		},
		&cli.StringFlag{
			Name:  "extras",
			Usage: "Comma separated extra fields to request",
		},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if needed, then initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Undo the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize rdx to act for your account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "oob",
						Usage: "Print the login URL and finish with 'auth complete' instead of waiting for a callback",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: 2 * time.Minute,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:      "complete",
				Usage:     "Exchange the verifier shown after an out-of-band login",
				ArgsUsage: "<verifier>",
				Action:    r.AuthComplete,
			},
			{
				Name:   "status",
				Usage:  "Show which credentials are configured",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the access token",
				Action: r.AuthLogout,
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog",
		ArgsUsage: "<query>",
		Flags: withFlags([]cli.Flag{
			&cli.StringFlag{
				Name:    "types",
				Aliases: []string{"t"},
				Usage:   "Comma separated object types: " + strings.Join(services.SearchTypes, ", "),
				Value:   strings.Join(services.SearchTypes, ","),
			},
			&cli.BoolFlag{
				Name:  "never-or",
				Usage: "Never fall back to matching any word of the query",
			},
		}, pageFlags(), outputFlags()),
		Action: r.Search,
	}
}

func suggestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Complete a partial query",
		ArgsUsage: "<prefix>",
		Flags: withFlags([]cli.Flag{
			&cli.StringFlag{Name: "extras", Usage: "Comma separated extra fields to request"},
		}, outputFlags()),
		Action: r.Suggest,
	}
}

func getCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch objects by key",
		ArgsUsage: "<key>...",
		Flags: withFlags([]cli.Flag{
			&cli.StringFlag{Name: "extras", Usage: "Comma separated extra fields to request"},
		}, outputFlags()),
		Action: r.Get,
	}
}

func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Look up the object behind an rdio.com URL or rd.io short code",
		ArgsUsage: "<url|code>",
		Flags:     outputFlags(),
		Action:    r.Resolve,
	}
}

func artistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artist",
		Usage: "Artist discography",
		Commands: []*cli.Command{
			{
				Name:      "albums",
				Usage:     "List an artist's albums",
				ArgsUsage: "<artist>",
				Flags: withFlags([]cli.Flag{
					&cli.BoolFlag{Name: "featuring", Usage: "Albums the artist is featured on"},
				}, pageFlags(), outputFlags()),
				Action: r.ArtistAlbums,
			},
			{
				Name:      "tracks",
				Usage:     "List an artist's tracks",
				ArgsUsage: "<artist>",
				Flags: withFlags([]cli.Flag{
					&cli.BoolFlag{Name: "appears-on", Usage: "Tracks the artist appears on"},
				}, pageFlags(), outputFlags()),
				Action: r.ArtistTracks,
			},
		},
	}
}

func chartsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "charts",
		Usage:     "Most popular objects of one type",
		ArgsUsage: "<" + strings.Join(services.ChartTypes, "|") + ">",
		Flags:     withFlags(pageFlags(), outputFlags()),
		Action:    r.Charts,
	}
}

func releasesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "releases",
		Usage: "New album releases",
		Flags: withFlags([]cli.Flag{
			&cli.StringFlag{
				Name:  "time",
				Usage: "Release window: " + strings.Join(services.NewReleaseTimes, ", "),
			},
		}, pageFlags(), outputFlags()),
		Action: r.Releases,
	}
}

func rotationCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rotation",
		Usage: "Albums or artists in heavy rotation",
		Flags: withFlags([]cli.Flag{
			&cli.StringFlag{Name: "user", Usage: "Limit to one user's listening"},
			&cli.StringFlag{Name: "type", Usage: "One of " + strings.Join(services.HeavyRotationTypes, ", ")},
			&cli.BoolFlag{Name: "friends", Usage: "Use the user's friends' listening"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of results"},
		}, outputFlags()),
		Action: r.Rotation,
	}
}

func playbackTokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "playback-token",
		Usage:     "Issue a token for the embeddable player",
		ArgsUsage: "<domain>",
		Action:    r.PlaybackToken,
	}
}

func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Look up users",
		Commands: []*cli.Command{
			{
				Name:  "find",
				Usage: "Find a user by email address or vanity name",
				Flags: withFlags([]cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Email address"},
					&cli.StringFlag{Name: "vanity", Usage: "Vanity name (the name in the profile URL)"},
				}, outputFlags()),
				Action: r.UserFind,
			},
			{
				Name:  "current",
				Usage: "Show the authorized user",
				Flags: withFlags([]cli.Flag{
					&cli.StringFlag{Name: "extras", Usage: "Comma separated extra fields to request"},
				}, outputFlags()),
				Action: r.UserCurrent,
			},
		},
	}
}

func activityCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "activity",
		Usage:     "Show a user's activity stream (the authorized user when omitted)",
		ArgsUsage: "[user]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scope",
				Usage: "One of " + strings.Join(services.ActivityScopes, ", "),
				Value: "user",
			},
			&cli.StringFlag{Name: "last-id", Usage: "Only show updates after this id"},
			&cli.BoolFlag{Name: "follow", Usage: "Resume after the last update seen by a previous run"},
			&cli.BoolFlag{Name: "reset", Usage: "With --follow, forget the stored position first"},
			&cli.DurationFlag{Name: "interval", Usage: "With --follow, keep polling at this interval"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: text, markdown or json", Value: "text"},
		},
		Action: r.Activity,
	}
}

func friendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "friend",
		Usage: "Manage friends",
		Commands: []*cli.Command{
			{Name: "add", Usage: "Add a friend", ArgsUsage: "<user>", Action: r.FriendAdd},
			{Name: "remove", Usage: "Remove a friend", ArgsUsage: "<user>", Action: r.FriendRemove},
		},
	}
}

// collectionFlags are the arguments of the collection listings.
func collectionFlags(sorts []string) []cli.Flag {
	return withFlags([]cli.Flag{
		&cli.StringFlag{Name: "user", Usage: "List another user's collection"},
		&cli.StringFlag{Name: "sort", Usage: "One of " + strings.Join(sorts, ", ")},
		&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Filter by name"},
		&cli.IntFlag{Name: "limit", Usage: "Stop after this many results (0 for all)"},
		&cli.IntFlag{Name: "page-size", Usage: "Results per request", Value: 100},
	}, outputFlags())
}

func collectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "collection",
		Usage: "Browse and edit a collection",
		Commands: []*cli.Command{
			{
				Name:  "albums",
				Usage: "List albums in a collection",
				Flags: withFlags(collectionFlags(services.AlbumSorts), []cli.Flag{
					&cli.StringFlag{Name: "artist", Usage: "Only albums by this artist"},
				}),
				Action: r.CollectionAlbums,
			},
			{
				Name:   "artists",
				Usage:  "List artists in a collection",
				Flags:  collectionFlags(services.ArtistSorts),
				Action: r.CollectionArtists,
			},
			{
				Name:  "tracks",
				Usage: "List tracks in a collection",
				Flags: withFlags(collectionFlags(services.TrackSorts), []cli.Flag{
					&cli.StringFlag{Name: "artist", Usage: "Only tracks by this artist"},
					&cli.StringFlag{Name: "album", Usage: "Only tracks on this album"},
					&cli.StringFlag{Name: "extras", Usage: "Comma separated extra fields to request"},
				}),
				Action: r.CollectionTracks,
			},
			{Name: "add", Usage: "Add tracks or playlists to your collection", ArgsUsage: "<key>...", Action: r.CollectionAdd},
			{Name: "remove", Usage: "Remove tracks or playlists from your collection", ArgsUsage: "<key>...", Action: r.CollectionRemove},
		},
	}
}

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List playlists you own, collaborate on or subscribe to",
				Flags: withFlags([]cli.Flag{
					&cli.StringFlag{Name: "extras", Usage: "Comma separated extra fields to request"},
				}, outputFlags()),
				Action: r.PlaylistList,
			},
			{
				Name:      "create",
				Usage:     "Create a playlist",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Playlist description"},
					&cli.StringFlag{Name: "tracks", Usage: "Comma separated track keys"},
				},
				Action: r.PlaylistCreate,
			},
			{Name: "delete", Usage: "Delete a playlist", ArgsUsage: "<playlist>", Action: r.PlaylistDelete},
			{Name: "add", Usage: "Append tracks to a playlist", ArgsUsage: "<playlist> <track>...", Action: r.PlaylistAdd},
			{
				Name:      "remove",
				Usage:     "Remove a run of tracks from a playlist",
				ArgsUsage: "<playlist> <track>...",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "index", Usage: "Position of the first track to remove"},
					&cli.IntFlag{Name: "count", Usage: "Number of tracks to remove (required)"},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:      "export",
				Usage:     "Export playlists and their tracks to files (all of yours when no keys are given)",
				ArgsUsage: "[playlist]...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Export format: text, csv, markdown or json", Value: "text"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory (default: rdio_export_{timestamp})"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent exports (max 10)", Value: 5},
					&cli.FloatFlag{Name: "rate", Usage: "Requests per second across all workers", Value: 5},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// cacheCommand inspects the local object cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect objects stored with --cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached objects",
				Flags: withFlags([]cli.Flag{
					&cli.StringFlag{Name: "kind", Usage: "Only objects of this type code (r, a, t, p, s...)"},
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Filter by title"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of results"},
				}, outputFlags()),
				Action: r.CacheList,
			},
			{
				Name:      "show",
				Usage:     "Show a cached object",
				ArgsUsage: "<key>",
				Flags:     outputFlags(),
				Action:    r.CacheShow,
			},
			{
				Name:   "clear",
				Usage:  "Delete every cached object",
				Action: r.CacheClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch the interactive catalog browser",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Usage: "Where to write logs while the TUI runs", Value: "rdx-tui.log"},
		},
		Action: r.TUI,
	}
}
