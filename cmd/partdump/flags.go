package main

import "github.com/urfave/cli/v2"

var (
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a TOML or YAML config file, defaults are used if omitted",
	}

	LogLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level (debug, info, warn, error)",
		Value: "warn",
	}

	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (json, msgpack)",
		Value:   string(FormatJSON),
	}

	BoundaryFlag = &cli.StringFlag{
		Name:     "boundary",
		Aliases:  []string{"b"},
		Usage:    "Multipart boundary, without the leading dashes",
		Required: true,
	}

	ChunkedFlag = &cli.BoolFlag{
		Name:  "chunked",
		Usage: "Input is encoded with the chunked transfer coding",
	}

	DirFlag = &cli.StringFlag{
		Name:  "dir",
		Usage: "Directory to store file uploads in, overrides multipart.dir of the config",
	}
)

func globalFlags() []cli.Flag {
	return []cli.Flag{ConfigFlag, LogLevelFlag, FormatFlag}
}
