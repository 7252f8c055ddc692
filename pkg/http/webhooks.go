package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/bolt/pkg/auth"
	"github.com/tzrikka/bolt/pkg/etcd"
	"github.com/tzrikka/bolt/pkg/interaction"
)

const (
	InteractionsPath = "/slack/interactions"
	RequestIDHeader  = "X-Request-Id"

	timeout = 3 * time.Second
	maxSize = 1 << 20 // 1 MiB.

	// Deliberately uninformative, to avoid leaking
	// implementation details to whoever sent the request.
	errorMessage = "An error occurred"
)

var errBodyTooLarge = errors.New("request body too large")

type httpServer struct {
	addr           string
	handlerTimeout time.Duration

	verifier *auth.Verifier
	router   *interaction.Router
	guard    *etcd.ReplayGuard
}

func newHTTPServer(cmd *cli.Command, v *auth.Verifier, r *interaction.Router, g *etcd.ReplayGuard) *httpServer {
	return &httpServer{
		addr:           cmd.String("http-addr"),
		handlerTimeout: cmd.Duration("handler-timeout"),

		verifier: v,
		router:   r,
		guard:    g,
	}
}

// run starts an HTTP server to receive interaction payloads.
// This is blocking, to keep the Bolt server running.
func (s *httpServer) run() error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+InteractionsPath, s.interactionHandler)

	server := &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  timeout,
		WriteTimeout: s.handlerTimeout + timeout,
	}

	log.Info().Msgf("HTTP server listening on %s", s.addr)
	err := server.ListenAndServe()
	if err != nil {
		log.Err(err).Send()
		return err
	}

	return nil
}

// interactionHandler authenticates inbound interaction payloads from Slack, and
// dispatches them to their registered handlers. Every failure is reported to
// the caller in the same way, with details only in the server's logs.
func (s *httpServer) interactionHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id := shortuuid.New()
	w.Header().Set(RequestIDHeader, id)

	l := log.With().Str("http_method", r.Method).Str("url_path", r.URL.EscapedPath()).
		Str("request_id", id).Logger()
	l.Info().Msg("received HTTP request")

	ctx, cancel := context.WithTimeout(l.WithContext(r.Context()), s.handlerTimeout)
	defer cancel()

	if err := s.handle(ctx, r); err != nil {
		l.Error().Stack().Err(err).Msg("failed to process interaction")
		http.Error(w, errorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

func (s *httpServer) handle(ctx context.Context, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
	if err != nil {
		return errors.Wrap(err, "failed to read HTTP request body")
	}
	if len(body) > maxSize {
		return errors.WithStack(errBodyTooLarge)
	}

	sig := r.Header.Get(auth.SignatureHeader)
	payload, err := s.verifier.Verify(r.Header.Get(auth.TimestampHeader), sig, body)
	if err != nil {
		return err
	}

	if err := s.guard.Check(ctx, sig); err != nil {
		return err
	}

	return s.router.Dispatch(ctx, payload)
}
