package main

import (
	"fmt"
	"os"

	"github.com/MixinNetwork/plog/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "plog"
	app.Usage = "Send log messages to a plog collector over UDP, and run a development collector."
	app.Version = config.BuildVersion
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "the TOML configuration file, built in defaults are used when absent",
		},
		&cli.IntFlag{
			Name:    "log",
			Aliases: []string{"l"},
			Usage:   "the log level, overrides the configuration file",
		},
		&cli.StringFlag{
			Name:  "filter",
			Usage: "the RE2 regex pattern to filter log",
		},
	}
	app.EnableBashCompletion = true
	app.Commands = []*cli.Command{
		{
			Name:    "send",
			Aliases: []string{"s"},
			Usage:   "Send a message, read from the arguments, a file or stdin",
			Action:  sendCmd,
			Flags: append(clientFlags(),
				&cli.IntFlag{
					Name:  "chunk-size",
					Usage: "the maximum payload bytes of each datagram",
				},
				&cli.IntFlag{
					Name:  "send-buffer-size",
					Usage: "the socket send buffer size, 0 keeps the system default",
				},
				&cli.StringSliceFlag{
					Name:    "tag",
					Aliases: []string{"t"},
					Usage:   "a tag attached to the message, repeatable",
				},
				&cli.StringFlag{
					Name:    "file",
					Aliases: []string{"f"},
					Usage:   "send the contents of `PATH`, - for stdin",
				},
			),
		},
		{
			Name:   "stats",
			Usage:  "Query the collector statistics",
			Action: statsCmd,
			Flags: append(clientFlags(),
				&cli.DurationFlag{
					Name:  "timeout",
					Value: config.DefaultStatsTimeout,
					Usage: "how long to wait for the answer",
				},
			),
		},
		{
			Name:    "collect",
			Aliases: []string{"c"},
			Usage:   "Run a development collector printing each reassembled message",
			Action:  collectCmd,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "listener",
					Usage: "the UDP address to listen",
				},
				&cli.StringFlag{
					Name:    "dir",
					Aliases: []string{"d"},
					Usage:   "archive the messages to this data directory",
				},
				&cli.IntFlag{
					Name:  "ttl",
					Usage: "seconds to wait for the missing chunks of a message",
				},
				&cli.IntFlag{
					Name:  "http",
					Usage: "serve the stats and archived messages on this HTTP port",
				},
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func clientFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "the collector host",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "the collector port",
		},
	}
}
