package thrippy

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	thrippypb "github.com/tzrikka/thrippy-api/thrippy/v1"

	"github.com/tzrikka/bolt/pkg/auth"
)

const (
	testLinkID = "KE9jTT8u6FZW6qYKgpYoEA"
)

type server struct {
	thrippypb.UnimplementedThrippyServiceServer
	resp *thrippypb.GetCredentialsResponse
	err  error
}

func (s *server) GetCredentials(_ context.Context, _ *thrippypb.GetCredentialsRequest) (*thrippypb.GetCredentialsResponse, error) {
	return s.resp, s.err
}

func TestLinkSecrets(t *testing.T) {
	tests := []struct {
		name    string
		resp    *thrippypb.GetCredentialsResponse
		respErr error
		want    map[string]string
		wantErr bool
	}{
		{
			name:    "grpc_error",
			respErr: errors.New("error"),
			wantErr: true,
		},
		{
			name: "no_secrets",
			resp: thrippypb.GetCredentialsResponse_builder{}.Build(),
		},
		{
			name:    "link_not_found",
			respErr: status.Error(codes.NotFound, "link not found"),
		},
		{
			name: "happy_path",
			resp: thrippypb.GetCredentialsResponse_builder{
				Credentials: map[string]string{"aaa": "111", "bbb": "222"},
			}.Build(),
			want: map[string]string{"aaa": "111", "bbb": "222"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := startServer(t, &server{resp: tt.resp, err: tt.respErr})

			got, err := LinkSecrets(t.Context(), addr, insecureCreds(), "link ID")
			if (err != nil) != tt.wantErr {
				t.Errorf("LinkSecrets() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LinkSecrets() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlackCredentials(t *testing.T) {
	tests := []struct {
		name    string
		linkID  string
		resp    *thrippypb.GetCredentialsResponse
		respErr error
		want    auth.Credentials
		wantErr error
	}{
		{
			name: "no_link",
		},
		{
			name:    "invalid_link_id",
			linkID:  "111",
			wantErr: errors.New("any"),
		},
		{
			name:    "link_not_found",
			linkID:  testLinkID,
			respErr: status.Error(codes.NotFound, "link not found"),
			wantErr: ErrLinkNotFound,
		},
		{
			name:    "grpc_error",
			linkID:  testLinkID,
			respErr: status.Error(codes.Unavailable, "unavailable"),
			wantErr: errors.New("any"),
		},
		{
			name:   "happy_path",
			linkID: testLinkID,
			resp: thrippypb.GetCredentialsResponse_builder{
				Credentials: map[string]string{"signing_secret": "s3cr3t", "bot_token": "xoxb-111"},
			}.Build(),
			want: auth.Credentials{SigningSecret: "s3cr3t", BotToken: "xoxb-111"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := startServer(t, &server{resp: tt.resp, err: tt.respErr})

			var got auth.Credentials
			var err error
			cmd := testCommand(t, func(ctx context.Context, cmd *cli.Command) error {
				got, err = SlackCredentials(ctx, cmd)
				return nil
			})

			args := []string{"test", "--dev", "--thrippy-server-addr", addr}
			if tt.linkID != "" {
				args = append(args, "--thrippy-link-id", tt.linkID)
			}
			if runErr := cmd.Run(t.Context(), args); runErr != nil {
				t.Fatalf("Run() error = %v", runErr)
			}

			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("SlackCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(tt.wantErr, ErrLinkNotFound) && !errors.Is(err, ErrLinkNotFound) {
				t.Errorf("SlackCredentials() error = %v, want %v", err, ErrLinkNotFound)
			}
			if got != tt.want {
				t.Errorf("SlackCredentials() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSecureCreds(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantSec string
		wantErr bool
	}{
		{
			name:    "dev_mode",
			args:    []string{"test", "--dev"},
			wantSec: "insecure",
		},
		{
			name:    "system_pool",
			args:    []string{"test"},
			wantSec: "tls",
		},
		{
			name:    "missing_ca_cert",
			args:    []string{"test", "--thrippy-ca-cert", filepath.Join(t.TempDir(), "missing.pem")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got credentials.TransportCredentials
			var err error
			cmd := testCommand(t, func(_ context.Context, cmd *cli.Command) error {
				got, err = SecureCreds(cmd)
				return nil
			})
			if runErr := cmd.Run(t.Context(), tt.args); runErr != nil {
				t.Fatalf("Run() error = %v", runErr)
			}

			if (err != nil) != tt.wantErr {
				t.Fatalf("SecureCreds() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if sec := got.Info().SecurityProtocol; sec != tt.wantSec {
				t.Errorf("SecureCreds() protocol = %q, want %q", sec, tt.wantSec)
			}
		})
	}
}

func startServer(t *testing.T, srv thrippypb.ThrippyServiceServer) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	s := grpc.NewServer()
	thrippypb.RegisterThrippyServiceServer(s, srv)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	return lis.Addr().String()
}

func testCommand(t *testing.T, action cli.ActionFunc) *cli.Command {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	flags := []cli.Flag{&cli.BoolFlag{Name: "dev"}}
	return &cli.Command{
		Name:   "test",
		Flags:  append(flags, Flags(altsrc.StringSourcer(path))...),
		Action: action,
	}
}

func insecureCreds() credentials.TransportCredentials {
	return insecure.NewCredentials()
}
