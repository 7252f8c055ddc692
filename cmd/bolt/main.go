package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/bolt/pkg/auth"
	"github.com/tzrikka/bolt/pkg/etcd"
	"github.com/tzrikka/bolt/pkg/http"
	"github.com/tzrikka/bolt/pkg/thrippy"
	"github.com/tzrikka/xdg"
)

const (
	ConfigDirName  = "bolt"
	ConfigFileName = "config.toml"
)

func main() {
	buildInfo, _ := debug.ReadBuildInfo()
	configFilePath := configFile()

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "simple setup, but unsafe for production",
		},
	}
	flags = append(flags, http.Flags(configFilePath)...)
	flags = append(flags, auth.Flags(configFilePath)...)
	flags = append(flags, thrippy.Flags(configFilePath)...)
	flags = append(flags, etcd.Flags(configFilePath)...)

	cmd := &cli.Command{
		Name:    "bolt",
		Usage:   "Authenticate Slack interactions over HTTP webhooks, and route them to handlers",
		Version: buildInfo.Main.Version,
		Flags:   flags,
		Action:  http.Start(routes),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// configFile returns the path to the app's configuration file.
// It also creates an empty file if it doesn't already exist.
func configFile() altsrc.StringSourcer {
	path, err := xdg.CreateFile(xdg.ConfigHome, ConfigDirName, ConfigFileName)
	if err != nil {
		log.Fatal().Err(err).Caller().Send()
	}
	return altsrc.StringSourcer(path)
}
