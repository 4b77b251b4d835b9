package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/plateful/recipe-ingest/internal/ingest"
)

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to a YAML config file",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "path to the sqlite database",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "only log errors",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable debug logging",
		},
	}

	app := &cli.App{
		Name:  "recipe-ingest",
		Usage: "Ingest recipe pages into a structured, deduplicated store",
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Run the ingestion pipeline over a batch of URLs",
				ArgsUsage: "[url ...]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "urls",
						Usage: "comma-separated list of recipe URLs",
					},
					&cli.StringFlag{
						Name:  "urls-file",
						Usage: "file with one URL per line ('#' lines are comments)",
					},
					&cli.BoolFlag{
						Name:  "apply",
						Usage: "persist results (default is a dry run)",
					},
					&cli.BoolFlag{
						Name:  "allow-unattributed",
						Usage: "ingest recipes even when no chef matches the domain",
					},
					&cli.IntFlag{
						Name:  "rate-limit-ms",
						Usage: "minimum delay between fetches",
					},
					&cli.IntFlag{
						Name:  "timeout-ms",
						Usage: "per-fetch timeout budget",
					},
					&cli.StringFlag{
						Name:  "state-file",
						Usage: "track processed URLs here so interrupted runs can resume",
					},
				}, commonFlags...),
				Action: ingest.IngestAction,
			},
			{
				Name:  "chefs",
				Usage: "Manage the chef roster used for attribution",
				Subcommands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Register a chef and their website domain",
						Flags: append([]cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Usage:    "chef display name",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "domain",
								Usage:    "website domain, e.g. example-cooking.com",
								Required: true,
							},
						}, commonFlags...),
						Action: ingest.ChefsAddAction,
					},
					{
						Name:   "list",
						Usage:  "Print active chefs as JSON",
						Flags:  commonFlags,
						Action: ingest.ChefsListAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
