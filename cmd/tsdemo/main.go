package main

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("tsdemo")

var subsystems = []string{"tsdemo", "tsdata", "records", "sqlsource"}

func main() {
	app := &cli.App{
		Name:  "tsdemo",
		Usage: "Serve time series records and load them through a caching provider",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file path",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error",
			},
		},
		Before: func(cctx *cli.Context) error {
			cfg, err := loadConfig(cctx.String("config"))
			if err != nil {
				return err
			}
			if cctx.IsSet("log-level") {
				cfg.LogLevel = cctx.String("log-level")
			}
			for _, name := range subsystems {
				if err = logging.SetLogLevel(name, cfg.LogLevel); err != nil {
					return fmt.Errorf("cannot set log level: %w", err)
				}
			}
			cctx.App.Metadata["config"] = cfg
			return nil
		},
		Commands: []*cli.Command{
			serveCmd,
			fetchCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getConfig(cctx *cli.Context) Config {
	cfg, ok := cctx.App.Metadata["config"].(Config)
	if !ok {
		return defaultConfig()
	}
	return cfg
}
