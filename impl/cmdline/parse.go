package cmdline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/aceeric/artcache/impl/config"

	"github.com/urfave/cli/v3"
)

// fromCmdline will be populated with flags indicating which configuration settings were
// specified on the command line.
var fromCmdline config.FromCmdLine

// cfg has the parsed configuration - including defaults (e.g. port) if the user does not override
var cfg = config.Configuration{}

func isFile(path string) error {
	if fi, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found")
	} else if fi.IsDir() {
		return fmt.Errorf("not a file")
	}
	return nil
}

func isPositive(v int64) error {
	if v <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

// siteFlags are shared by every command that talks to the site
func siteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "site-url",
			Value:       "http://localhost:3000",
			Usage:       "The base URL of the site that serves the data files and the gallery images",
			Destination: &cfg.SiteUrl,
			Validator: func(siteUrl string) error {
				if u, err := url.Parse(siteUrl); err != nil || !u.IsAbs() {
					return fmt.Errorf("must be an absolute URL")
				}
				return nil
			},
			Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
				fromCmdline.SiteUrl = true
				return nil
			},
		},
		&cli.StringFlag{
			Name:        "manifest-path",
			Value:       "data/ipfs-manifest.json",
			Usage:       "The path of the IPFS manifest relative to the site URL",
			Destination: &cfg.ManifestPath,
			Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
				fromCmdline.ManifestPath = true
				return nil
			},
		},
		&cli.IntFlag{
			Name:        "fetch-timeout",
			Value:       5000,
			Usage:       "The max time to fetch a JSON file in milliseconds before timing out",
			Destination: &cfg.FetchTimeout,
			Validator:   isPositive,
			Action: func(ctx context.Context, cmd *cli.Command, _ int64) error {
				fromCmdline.FetchTimeout = true
				return nil
			},
		},
	}
}

// imageFlags are shared by the commands that load artwork images
func imageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "image-base",
			Value:       "images/gallery",
			Usage:       "The path of the gallery images relative to the site URL",
			Destination: &cfg.ImageBase,
			Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
				fromCmdline.ImageBase = true
				return nil
			},
		},
		&cli.StringFlag{
			Name:        "format",
			Value:       "webp",
			Usage:       "The default image format (file extension)",
			Destination: &cfg.Format,
			Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
				fromCmdline.Format = true
				return nil
			},
		},
		&cli.IntFlag{
			Name:        "image-timeout",
			Value:       10000,
			Usage:       "The max time of one image load attempt in milliseconds before timing out",
			Destination: &cfg.ImageTimeout,
			Validator:   isPositive,
			Action: func(ctx context.Context, cmd *cli.Command, _ int64) error {
				fromCmdline.ImageTimeout = true
				return nil
			},
		},
	}
}

// cmds is for the command line parser urfave/cli
var cmds = &cli.Command{
	Name:  "artcache",
	Usage: "a caching server for artwork metadata and images with an IPFS gateway fallback",
	// define this or the parser terminates the program
	ExitErrHandler: func(_ context.Context, _ *cli.Command, _ error) {},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Value:       "error",
			Usage:       "Sets the minimum value for logging: debug, warn, info, or error",
			Destination: &cfg.LogLevel,
			Validator: func(lvl string) error {
				validValues := []string{"debug", "warn", "info", "error"}
				if !slices.Contains(validValues, strings.ToLower(lvl)) {
					return fmt.Errorf("must be one of %s", strings.Join(validValues, ", "))
				}
				return nil
			},
			Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
				fromCmdline.LogLevel = true
				return nil
			},
		},
		&cli.StringFlag{
			Name:        "config-file",
			Usage:       "A file to load configuration values from (cmdline overrides file settings)",
			Destination: &cfg.ConfigFile,
			Validator:   isFile,
			Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
				fromCmdline.ConfigFile = true
				return nil
			},
		},
		&cli.StringFlag{
			Name:        "log-file",
			Value:       "",
			Usage:       "log to the specified file rather than the console",
			Destination: &cfg.LogFile,
			Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
				fromCmdline.LogFile = true
				return nil
			},
		},
	},
	Commands: []*cli.Command{
		{
			Name:  "serve",
			Usage: "Runs the server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				fromCmdline.Command = "serve"
				return nil
			},
			Flags: slices.Concat(siteFlags(), imageFlags(), []cli.Flag{
				&cli.IntFlag{
					Name:        "port",
					Value:       8080,
					Usage:       "The port to serve on",
					Destination: &cfg.Port,
					Action: func(ctx context.Context, cmd *cli.Command, _ int64) error {
						fromCmdline.Port = true
						return nil
					},
				},
				&cli.IntFlag{
					Name:        "health",
					Usage:       "A port to serve a health endpoint on (no health endpoint if omitted)",
					Destination: &cfg.Health,
					Action: func(ctx context.Context, cmd *cli.Command, _ int64) error {
						fromCmdline.Health = true
						return nil
					},
				},
				&cli.IntFlag{
					Name:        "metrics",
					Usage:       "A port to serve prometheus metrics on (no metrics if omitted)",
					Destination: &cfg.Metrics,
					Action: func(ctx context.Context, cmd *cli.Command, _ int64) error {
						fromCmdline.Metrics = true
						return nil
					},
				},
				&cli.IntFlag{
					Name:        "ttl",
					Value:       300000,
					Usage:       "How long a fetched JSON file is served from the cache, in milliseconds",
					Destination: &cfg.Ttl,
					Validator:   isPositive,
					Action: func(ctx context.Context, cmd *cli.Command, _ int64) error {
						fromCmdline.Ttl = true
						return nil
					},
				},
				&cli.StringFlag{
					Name:        "metadata-path",
					Value:       "data/artworks-metadata.json",
					Usage:       "The path of the artwork metadata relative to the site URL",
					Destination: &cfg.MetadataPath,
					Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
						fromCmdline.MetadataPath = true
						return nil
					},
				},
				&cli.StringFlag{
					Name:        "preload-artworks",
					Usage:       "Warms the cache from a file containing a list of artwork ids",
					Destination: &cfg.PreloadArt,
					Validator:   isFile,
					Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
						fromCmdline.PreloadArt = true
						return nil
					},
				},
				&cli.BoolFlag{
					Name:        "watch-config",
					Value:       false,
					Usage:       "Reloads the config file and clears the cache when the config file changes",
					Destination: &cfg.WatchConfig,
					Action: func(ctx context.Context, cmd *cli.Command, _ bool) error {
						fromCmdline.WatchConfig = true
						return nil
					},
				},
			}),
		},
		{
			Name:  "warm",
			Usage: "Loads the metadata and the listed artwork images through the fallback chain and reports",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				fromCmdline.Command = "warm"
				return nil
			},
			Flags: slices.Concat(siteFlags(), imageFlags(), []cli.Flag{
				&cli.StringFlag{
					Name:        "artworks",
					Usage:       "A file containing a list of artwork ids, one per line",
					Destination: &cfg.WarmConfig.ArtworkFile,
					Validator:   isFile,
					Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
						fromCmdline.WarmConfig = true
						return nil
					},
				},
				&cli.IntFlag{
					Name:        "concurrency",
					Usage:       "The number of images to load concurrently (default 4)",
					Destination: &cfg.WarmConfig.Concurrency,
					Validator:   isPositive,
					Action: func(ctx context.Context, cmd *cli.Command, _ int64) error {
						fromCmdline.WarmConfig = true
						return nil
					},
				},
			}),
		},
		{
			Name:  "manifest",
			Usage: "Lists the entries of the IPFS manifest",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				fromCmdline.Command = "manifest"
				return nil
			},
			Flags: slices.Concat(siteFlags(), []cli.Flag{
				&cli.BoolFlag{
					Name:        "header",
					Value:       false,
					Usage:       "Displays a header line",
					Destination: &cfg.ListConfig.Header,
					Action: func(ctx context.Context, cmd *cli.Command, _ bool) error {
						fromCmdline.ListConfig = true
						return nil
					},
				},
				&cli.StringFlag{
					Name:        "pattern",
					Usage:       "List artworks matching the comma-separated pattern(s), e.g. '--pattern rocks,amor'",
					Destination: &cfg.ListConfig.Expr,
					Action: func(ctx context.Context, cmd *cli.Command, _ string) error {
						fromCmdline.ListConfig = true
						return nil
					},
				},
			}),
		},
		{
			Name:  "version",
			Usage: "Displays the version",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				fromCmdline.Command = "version"
				return nil
			},
		},
	},
}

// Parse parses the command line. It returns the following:
//
//  1. A FromCmdLine struct which has the command to run ("serve", "warm", etc.). If the command
//     is the empty string then no sub-command was specified in which case the parser auto-displays
//     help. This struct also has flags telling you which configuration values were provided by the
//     user on the command line.
//  2. A Configuration struct containing the parsed configuration values. For any configuration flag
//     in the FromCmdLine struct with a false value, the corresponding configuration value in *this*
//     struct will be the default.
//  3. An error, if the parser returned one, else nil.
func Parse() (config.FromCmdLine, config.Configuration, error) {
	if err := cmds.Run(context.Background(), os.Args); err != nil {
		return config.FromCmdLine{}, config.Configuration{}, err
	}
	return fromCmdline, cfg, nil
}

// ClearParse supports unit testing
func ClearParse() {
	fromCmdline = config.FromCmdLine{}
	cfg = config.Configuration{}
}
