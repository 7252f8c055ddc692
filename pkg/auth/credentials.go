package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"go.uber.org/multierr"
)

var ErrMissingSigningSecret = errors.New("missing Slack signing secret")

// Credentials of a Slack app. Only the signing secret is required, to
// authenticate inbound requests. The bot and user tokens are needed only
// by handlers that call Slack's Web API.
type Credentials struct {
	SigningSecret string
	BotToken      string
	UserToken     string
}

// FromSecrets extracts Slack credentials from a map of named
// secrets (e.g. the saved secrets of a Thrippy link).
func FromSecrets(m map[string]string) Credentials {
	return Credentials{
		SigningSecret: m["signing_secret"],
		BotToken:      m["bot_token"],
		UserToken:     m["user_token"],
	}
}

// Merge returns a copy of c, with empty fields filled from other.
func (c Credentials) Merge(other Credentials) Credentials {
	if c.SigningSecret == "" {
		c.SigningSecret = other.SigningSecret
	}
	if c.BotToken == "" {
		c.BotToken = other.BotToken
	}
	if c.UserToken == "" {
		c.UserToken = other.UserToken
	}
	return c
}

// Validate reports a missing signing secret as an error. Missing
// API tokens are only warnings, since some apps don't need them.
func (c Credentials) Validate(ctx context.Context) error {
	if c.SigningSecret == "" {
		return errors.WithStack(ErrMissingSigningSecret)
	}

	l := zerolog.Ctx(ctx)
	if c.BotToken == "" {
		l.Warn().Msg("Slack bot token is not configured")
	}
	if c.UserToken == "" {
		l.Warn().Msg("Slack user token is not configured")
	}

	return nil
}

func (c Credentials) Verifier(opts ...VerifierOpt) *Verifier {
	return NewVerifier(c.SigningSecret, opts...)
}

// BotClient returns a Slack Web API client which uses the bot
// token, or nil if the bot token is not configured.
func (c Credentials) BotClient(opts ...slack.Option) *slack.Client {
	if c.BotToken == "" {
		return nil
	}
	return slack.New(c.BotToken, opts...)
}

// UserClient returns a Slack Web API client which uses the user
// token, or nil if the user token is not configured.
func (c Credentials) UserClient(opts ...slack.Option) *slack.Client {
	if c.UserToken == "" {
		return nil
	}
	return slack.New(c.UserToken, opts...)
}

// CheckTokens calls https://docs.slack.dev/reference/methods/auth.test
// with each configured token, and returns all the errors it encounters.
func (c Credentials) CheckTokens(ctx context.Context, opts ...slack.Option) error {
	l := zerolog.Ctx(ctx)

	var errs error
	for name, client := range map[string]*slack.Client{
		"bot":  c.BotClient(opts...),
		"user": c.UserClient(opts...),
	} {
		if client == nil {
			continue
		}

		resp, err := client.AuthTestContext(ctx)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "%s token", name))
			continue
		}

		l.Debug().Str("token", name).Str("team", resp.Team).Str("user", resp.User).
			Msg("Slack token is valid")
	}

	return errs
}
