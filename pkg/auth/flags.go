package auth

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// Flags defines CLI flags to configure the Slack app's credentials. These flags
// can also be set using environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "slack-signing-secret",
			Usage: "Slack app's signing secret, to authenticate inbound requests",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_SIGNING_SECRET"),
				toml.TOML("slack.signing_secret", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-bot-token",
			Usage: "Slack app's bot token (optional)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_BOT_TOKEN"),
				toml.TOML("slack.bot_token", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-user-token",
			Usage: "Slack app's user token (optional)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_USER_TOKEN"),
				toml.TOML("slack.user_token", configFilePath),
			),
		},
	}
}

// FromFlags returns the credentials that were set with [Flags].
func FromFlags(cmd *cli.Command) Credentials {
	return Credentials{
		SigningSecret: cmd.String("slack-signing-secret"),
		BotToken:      cmd.String("slack-bot-token"),
		UserToken:     cmd.String("slack-user-token"),
	}
}
