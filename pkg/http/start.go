package http

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/bolt/pkg/auth"
	"github.com/tzrikka/bolt/pkg/etcd"
	"github.com/tzrikka/bolt/pkg/interaction"
	"github.com/tzrikka/bolt/pkg/thrippy"
)

// RouterFunc builds the application's interaction router. It's called
// after the Slack app's credentials are known, so handlers can use
// the Web API clients that [auth.Credentials] provides.
type RouterFunc func(creds auth.Credentials) *interaction.Router

// Start returns a CLI action that initializes Bolt's logging, credentials,
// and optional replay guard, and then runs the HTTP server.
func Start(routes RouterFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		initLog(cmd.Bool("dev"))
		ctx = log.Logger.WithContext(ctx)

		creds, err := credentials(ctx, cmd)
		if err != nil {
			log.Error().Stack().Err(err).Msg("invalid Slack credentials")
			return err
		}

		if err := creds.CheckTokens(ctx); err != nil {
			log.Warn().Err(err).Msg("Slack API token check failed")
		}

		guard, err := etcd.NewReplayGuard(cmd)
		if err != nil {
			log.Error().Stack().Err(err).Send()
			return err
		}
		defer guard.Close()

		r := routes(creds)
		log.Info().Int("handlers", r.Len()).Msg("registered interaction handlers")

		return newHTTPServer(cmd, creds.Verifier(), r, guard).run()
	}
}

// credentials combines the Slack credentials from the CLI flags with those of
// the optional Thrippy link (flags take precedence), and validates them.
func credentials(ctx context.Context, cmd *cli.Command) (auth.Credentials, error) {
	link, err := thrippy.SlackCredentials(ctx, cmd)
	if err != nil {
		return auth.Credentials{}, err
	}

	creds := auth.FromFlags(cmd).Merge(link)
	if err := creds.Validate(ctx); err != nil {
		return auth.Credentials{}, err
	}

	return creds, nil
}

// initLog initializes the logger for the Bolt server,
// based on whether it's running in development mode or not.
func initLog(devMode bool) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if !devMode {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
		return
	}

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05.000",
	}).With().Caller().Logger()

	log.Warn().Msg("********** DEV MODE - UNSAFE IN PRODUCTION! **********")
}
