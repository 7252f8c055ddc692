package thrippy

import (
	"crypto/tls"

	"github.com/pkg/errors"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	DefaultGRPCAddress = "localhost:14460"
)

// Flags defines CLI flags to configure a Thrippy gRPC client, which may provide
// the Slack app's credentials instead of (or in addition to) the "slack-*" flags.
// These flags can also be set using environment variables and the application's
// configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "thrippy-server-addr",
			Usage: "Thrippy gRPC server address",
			Value: DefaultGRPCAddress,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_SERVER_ADDR"),
				toml.TOML("thrippy.server_addr", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "thrippy-link-id",
			Usage: "Thrippy link ID of the Slack app (optional)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_LINK_ID"),
				toml.TOML("thrippy.link_id", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "thrippy-ca-cert",
			Usage: "CA certificate file of the Thrippy gRPC server (default = system pool)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_CA_CERT"),
				toml.TOML("thrippy.ca_cert", configFilePath),
			),
		},
	}
}

// SecureCreds returns gRPC client credentials based on the CLI flags.
// In development mode, the connection to Thrippy is insecure.
func SecureCreds(cmd *cli.Command) (credentials.TransportCredentials, error) {
	if cmd.Bool("dev") {
		return insecure.NewCredentials(), nil
	}

	if path := cmd.String("thrippy-ca-cert"); path != "" {
		creds, err := credentials.NewClientTLSFromFile(path, "")
		if err != nil {
			return nil, errors.Wrap(err, "failed to load Thrippy CA certificate")
		}
		return creds, nil
	}

	return credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}), nil
}
