package http

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

const (
	DefaultAddress = "127.0.0.1:8080"

	// Slack expects an acknowledgement of interactions within 3 seconds.
	DefaultHandlerTimeout = 3 * time.Second
)

// Flags defines CLI flags to configure the HTTP server. These flags can also
// be set using environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "http-addr",
			Usage: "local address to bind the HTTP server to",
			Value: DefaultAddress,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BOLT_HTTP_ADDR"),
				toml.TOML("http.addr", configFilePath),
			),
		},
		&cli.DurationFlag{
			Name:  "handler-timeout",
			Usage: "maximum time to process each interaction",
			Value: DefaultHandlerTimeout,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BOLT_HANDLER_TIMEOUT"),
				toml.TOML("http.handler_timeout", configFilePath),
			),
		},
	}
}
