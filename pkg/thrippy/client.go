package thrippy

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	thrippypb "github.com/tzrikka/thrippy-api/thrippy/v1"

	"github.com/tzrikka/bolt/pkg/auth"
)

const (
	timeout = 3 * time.Second
)

var ErrLinkNotFound = errors.New("Thrippy link not found")

// Connection creates a gRPC client connection to the given Thrippy server address.
// It supports both secure and insecure connections, based on the given credentials.
func Connection(addr string, creds credentials.TransportCredentials) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
}

// LinkSecrets returns the saved secrets of a given Thrippy link. This
// function reports gRPC errors, but if the link is not found it returns nil.
func LinkSecrets(ctx context.Context, grpcAddr string, creds credentials.TransportCredentials, linkID string) (map[string]string, error) {
	l := zerolog.Ctx(ctx)

	conn, err := Connection(grpcAddr, creds)
	if err != nil {
		l.Error().Stack().Err(err).Send()
		return nil, err
	}
	defer conn.Close()

	c := thrippypb.NewThrippyServiceClient(conn)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.GetCredentials(ctx, thrippypb.GetCredentialsRequest_builder{
		LinkId: proto.String(linkID),
	}.Build())
	if err != nil {
		if status.Code(err) != codes.NotFound {
			l.Error().Stack().Err(err).Send()
			return nil, err
		}
		return nil, nil
	}

	return resp.GetCredentials(), nil
}

// SlackCredentials returns the Slack app credentials that are stored in
// the Thrippy link which is configured with [Flags]. If no link is
// configured, this function returns empty credentials without an error.
func SlackCredentials(ctx context.Context, cmd *cli.Command) (auth.Credentials, error) {
	linkID := cmd.String("thrippy-link-id")
	if linkID == "" {
		return auth.Credentials{}, nil
	}

	if _, err := shortuuid.DefaultEncoder.Decode(linkID); err != nil {
		return auth.Credentials{}, errors.Wrapf(err, "invalid Thrippy link ID %q", linkID)
	}

	creds, err := SecureCreds(cmd)
	if err != nil {
		return auth.Credentials{}, err
	}

	m, err := LinkSecrets(ctx, cmd.String("thrippy-server-addr"), creds, linkID)
	if err != nil {
		return auth.Credentials{}, errors.Wrap(err, "failed to get link secrets from Thrippy over gRPC")
	}
	if m == nil {
		return auth.Credentials{}, errors.Wrap(ErrLinkNotFound, linkID)
	}

	zerolog.Ctx(ctx).Info().Str("link_id", linkID).Msg("using Slack credentials from Thrippy link")
	return auth.FromSecrets(m), nil
}
