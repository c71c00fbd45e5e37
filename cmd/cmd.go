// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles first-run setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the catalog cache and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the newest catalog cache migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "spotify",
				Usage: "Authorize with Spotify using OAuth2 to read private playlists",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: authTimeout,
					},
				},
				Action: r.SpotifyAuth,
			},
		},
	}
}

// playlistCommand handles catalog operations that do not open the graph.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "List, fetch, cache and export playlist catalogs",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List your Spotify playlists (requires `playgraph auth spotify`)",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Maximum number of playlists to list (0 for all)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "fetch",
				Usage: "Fetch a playlist with its artists and cache it",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Ignore the cached copy",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the catalog to this file for `playgraph view --file`",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PlaylistFetch,
			},
			{
				Name:      "export",
				Usage:     "Export one or more playlists concurrently",
				ArgsUsage: "<id> [id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: playgraph_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist fetches per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Ignore cached copies",
					},
				},
				Action: r.PlaylistExport,
			},
			{
				Name:  "artists",
				Usage: "List a playlist's artists by track count",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read the catalog from a file instead of fetching",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, csv, json",
						Value: "text",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of artists to list (0 for all)",
					},
				},
				Action: r.PlaylistArtists,
			},
		},
	}
}

// viewCommand launches the interactive graph.
func viewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "view",
		Aliases: []string{"ui", "tui"},
		Usage:   "Explore a playlist's artists and tracks in the terminal",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the catalog from a file instead of fetching",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Reload the graph when --file changes",
			},
			&cli.StringSliceFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Open the relationship graph on these artist ids",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Ignore the cached copy",
			},
			&cli.BoolFlag{
				Name:  "no-images",
				Usage: "Keep default fills instead of sampling artist images",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Serve Prometheus metrics while the view runs (see [metrics] addr)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file while the terminal is in use (default: [log] file)",
			},
		},
		Action: r.View,
	}
}

// layoutCommand settles a layout without a terminal and prints the final frame.
func layoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "layout",
		Usage: "Compute a settled layout headlessly and print node positions",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the catalog from a file instead of fetching",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Layout: graph or bubbles",
				Value: "graph",
			},
			&cli.StringSliceFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Explored artist ids for the graph layout",
			},
			&cli.FloatFlag{
				Name:  "width",
				Usage: "Viewport width in world units",
				Value: 1280,
			},
			&cli.FloatFlag{
				Name:  "height",
				Usage: "Viewport height in world units",
				Value: 800,
			},
			&cli.IntFlag{
				Name:  "ticks",
				Usage: "Maximum simulation steps (default: [simulation] max_ticks)",
			},
			&cli.DurationFlag{
				Name:  "realtime",
				Usage: "Run frames at the configured interval for this long instead of stepping as fast as possible",
			},
			&cli.BoolFlag{
				Name:  "images",
				Usage: "Resolve artist image fills",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json or csv",
				Value: "json",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON",
				Value: true,
			},
		},
		Action: r.Layout,
	}
}

// cacheCommand manages the local catalog cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and prune cached playlist catalogs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:  "delete",
				Usage: "Remove one cached playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.CacheDelete,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached catalog",
				Action: r.CacheClear,
			},
		},
	}
}
