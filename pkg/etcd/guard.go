package etcd

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/tzrikka/bolt/pkg/auth"
)

const (
	keyPrefix   = "/bolt/signatures/"
	dialTimeout = 3 * time.Second

	// A timestamp is fresh up to [auth.MaxDifference] in both
	// directions, so its signature must be remembered twice as long.
	signatureTTL = 2 * auth.MaxDifference
)

var ErrReplayed = fmt.Errorf("%w: replayed request", auth.ErrAuthentication)

// ReplayGuard remembers the signatures of authenticated requests, and rejects
// requests whose signature it has already seen. Entries expire automatically
// once their timestamp can no longer pass the freshness check anyway.
type ReplayGuard struct {
	store store
	ttl   time.Duration
}

// store atomically creates a key with a TTL, unless it already exists.
type store interface {
	putIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	close() error
}

// NewReplayGuard returns nil if the replay guard is disabled.
func NewReplayGuard(cmd *cli.Command) (*ReplayGuard, error) {
	if !cmd.Bool("replay-guard") {
		return nil, nil
	}

	c, err := clientv3.New(clientv3.Config{
		Endpoints:   cmd.StringSlice("etcd-endpoint-urls"),
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize etcd client")
	}

	return &ReplayGuard{store: &etcdStore{client: c}, ttl: signatureTTL}, nil
}

// Check records the given signature, and returns [ErrReplayed] if it was already
// recorded. A nil guard accepts everything, so it can be used unconditionally.
func (g *ReplayGuard) Check(ctx context.Context, sig string) error {
	if g == nil {
		return nil
	}

	ok, err := g.store.putIfAbsent(ctx, key(sig), g.ttl)
	if err != nil {
		return errors.Wrap(err, "replay guard")
	}
	if !ok {
		return errors.WithStack(ErrReplayed)
	}

	return nil
}

func (g *ReplayGuard) Close() error {
	if g == nil {
		return nil
	}
	return g.store.close()
}

// key generates a stable-but-irreversible etcd key for a request signature.
func key(sig string) string {
	h := sha256.Sum256([]byte(sig))
	return fmt.Sprintf("%s%x", keyPrefix, h)
}

type etcdStore struct {
	client *clientv3.Client
}

func (s *etcdStore) putIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	lease, err := s.client.Grant(ctx, int64(ttl.Seconds()))
	if err != nil {
		return false, err
	}

	resp, err := s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, time.Now().UTC().Format(time.RFC3339), clientv3.WithLease(lease.ID))).
		Commit()
	if err != nil {
		return false, err
	}

	if !resp.Succeeded {
		// The key's existing lease keeps it alive, this one is unused.
		if _, err := s.client.Revoke(ctx, lease.ID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to revoke unused etcd lease")
		}
	}

	return resp.Succeeded, nil
}

func (s *etcdStore) close() error {
	return s.client.Close()
}
