package main

import (
	"fmt"
	"os"

	"github.com/DeckerSU/equihashverify/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ehverify: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "ehverify"
	app.Usage = "verify Equihash proof-of-work solutions"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "config file path (YAML); EHVERIFY_* variables override it",
		},
		cli.StringFlag{
			Name:  "log, l",
			Usage: "log level: debug,info,warning,error",
		},
	}

	app.Before = func(c *cli.Context) error {
		cfg, err := config.Load(c.String("config"))
		if err != nil {
			return err
		}
		if c.IsSet("log") {
			cfg.Log.Level = c.String("log")
		}

		lv, err := logrus.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logrus.SetLevel(lv)

		app.Metadata = map[string]interface{}{"config": cfg}
		return nil
	}

	app.Commands = []cli.Command{
		verifyCommand,
		paramsCommand,
		serveCommand,
	}

	return app
}

func loadedConfig(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}
