package fixture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/dashboard/datasource/remote"
	"github.com/Abraxas-365/talentdesk/internal/ai/resumeparser"
	"github.com/Abraxas-365/talentdesk/pkg/apiclient"
	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationapi"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationsrv"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidateapi"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidateinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidatesrv"
	"github.com/Abraxas-365/talentdesk/recruitment/client/clientapi"
	"github.com/Abraxas-365/talentdesk/recruitment/client/clientinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/client/clientsrv"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/Abraxas-365/talentdesk/recruitment/events/eventsinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/resumeapi"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/resumeinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/resumesrv"
	"github.com/Abraxas-365/talentdesk/recruitment/stats"
	"github.com/Abraxas-365/talentdesk/recruitment/stats/statsapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// BaseURL is the host requests to the in-process backend are addressed to
const BaseURL = "http://fixture.talentdesk.local"

// secret is fixed so a token saved by one CLI run stays valid in the next
const secret = "talentdesk-fixture-secret"

const queueDepth = 1024

type options struct {
	parser resume.Parser
}

type Option func(*options)

// WithParser replaces the heuristic resume parser
func WithParser(p resume.Parser) Option {
	return func(o *options) { o.parser = p }
}

// Backend is the reference backend assembled on memory adapters and served
// in-process. Requests reach it through Transport without touching a socket.
type Backend struct {
	app      *fiber.App
	broker   *eventsinfra.MemoryBroker
	auth     *auth.UnifiedAuthMiddleware
	filesDir string
}

func New(ctx context.Context, opts ...Option) (*Backend, error) {
	o := options{parser: resumeparser.NewHeuristicParser()}
	for _, opt := range opts {
		opt(&o)
	}

	filesDir, err := os.MkdirTemp("", "talentdesk-fixture-*")
	if err != nil {
		return nil, fmt.Errorf("create fixture file dir: %w", err)
	}
	files, err := fsxlocal.NewLocalFileSystem(filesDir)
	if err != nil {
		_ = os.RemoveAll(filesDir)
		return nil, err
	}

	b := &Backend{broker: eventsinfra.NewMemoryBroker(), filesDir: filesDir}

	// --- Repositories ---
	users := userinfra.NewMemoryUserRepository()
	candidates := candidateinfra.NewMemoryCandidateRepository()
	applications := applicationinfra.NewMemoryApplicationRepository()
	clients := clientinfra.NewMemoryClientRepository()
	jobs := resumeinfra.NewMemoryJobRepository()
	revocations := auth.NewMemoryRevocationStore()

	// --- Services ---
	authCfg := auth.DefaultConfig()
	authCfg.JWTSecret = secret
	jwtService := auth.NewJWTService(authCfg)
	authService := auth.NewAuthService(users, jwtService, revocations)

	clientService := clientsrv.NewClientService(clients, clientsrv.WithEvents(b.broker))
	candidateService := candidatesrv.NewCandidateService(candidates,
		candidatesrv.WithApplicationCounter(applications),
		candidatesrv.WithEvents(b.broker),
	)
	applicationService := applicationsrv.NewApplicationService(applications,
		applicationsrv.WithCandidateChecker(candidateService),
		applicationsrv.WithClientChecker(clientService),
		applicationsrv.WithEvents(b.broker),
	)
	resumeService := resumesrv.NewService(jobs, resumeinfra.NewMemoryQueue(queueDepth), files, o.parser,
		resumesrv.WithEvents(b.broker),
	)
	statsService := stats.NewService(candidateService, applicationService, clientService, resumeService)

	s := seeder{
		users:        users,
		clients:      clients,
		candidates:   candidateService,
		applications: applicationService,
	}
	if err := s.seed(ctx); err != nil {
		b.Close()
		return nil, err
	}

	// --- HTTP ---
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          fiberx.ErrorHandler,
		BodyLimit:             80 << 20,
	})
	app.Use(recover.New())
	app.Use(idempotency.New(idempotency.Config{
		Lifetime:  30 * time.Minute,
		KeyHeader: apiclient.IdempotencyHeader,
	}))

	mw := auth.NewAuthMiddleware(jwtService, revocations)
	b.auth = mw
	auth.RegisterRoutes(app, auth.NewAuthHandlers(authService), mw)
	candidateapi.RegisterRoutes(app, candidateapi.NewHandlers(candidateService), mw)
	applicationapi.NewApplicationHandlers(applicationService).RegisterRoutes(app, mw)
	clientapi.NewClientHandlers(clientService).RegisterRoutes(app, mw)
	resumeapi.NewResumeHandlers(resumeService).RegisterRoutes(app, mw)
	statsapi.NewHandlers(statsService).RegisterRoutes(app, mw)
	b.app = app

	logx.Debugf("Fixture backend ready, files under %s", filesDir)
	return b, nil
}

// RoundTrip serves req with the in-process app
func (b *Backend) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	resp, err := b.app.Test(req, -1)
	if err != nil {
		return nil, err
	}
	resp.Request = req
	return resp, nil
}

// HTTPClient is handed to apiclient.Config in fixture mode
func (b *Backend) HTTPClient() *http.Client {
	return &http.Client{Transport: b}
}

// Source serves the dashboard interface from this backend. tokens is the
// store the apiclient reads from; the event stream checks it directly.
func (b *Backend) Source(api *apiclient.Client, tokens apiclient.TokenSource) datasource.Source {
	return &source{Source: remote.New(api), backend: b, tokens: tokens}
}

// Publish injects an event as if a service had emitted it
func (b *Backend) Publish(ctx context.Context, ev events.Event) error {
	return b.broker.Publish(ctx, ev)
}

func (b *Backend) Close() error {
	if err := b.broker.Close(); err != nil {
		logx.Warnf("Failed to close fixture broker: %v", err)
	}
	if b.app != nil {
		_ = b.app.Shutdown()
	}
	return os.RemoveAll(b.filesDir)
}

// stream renders broker events as server-sent event frames. The in-process
// app buffers whole responses, so the push channel bypasses it.
func (b *Backend) stream(ctx context.Context) (io.ReadCloser, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub, err := b.broker.Subscribe(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		defer sub.Close()
		if _, err := pw.Write([]byte(": connected\n\n")); err != nil {
			return
		}
		for {
			select {
			case <-ctx.Done():
				pw.CloseWithError(ctx.Err())
				return
			case ev, ok := <-sub.Events():
				if !ok {
					pw.Close()
					return
				}
				frame, err := events.Frame(ev)
				if err != nil {
					logx.Errorf("Failed to write event: %v", err)
					continue
				}
				if _, err := pw.Write(frame); err != nil {
					return
				}
			}
		}
	}()

	return &streamBody{PipeReader: pr, cancel: cancel}, nil
}

type streamBody struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (s *streamBody) Close() error {
	s.cancel()
	return s.PipeReader.Close()
}

type source struct {
	*remote.Source
	backend *Backend
	tokens  apiclient.TokenSource
}

func (s *source) Stream(ctx context.Context) (io.ReadCloser, error) {
	token := ""
	if s.tokens != nil {
		token = s.tokens.Token(ctx)
	}
	if token == "" {
		return nil, apiclient.ErrUnauthorized()
	}
	if _, err := s.backend.auth.Verify(ctx, token); err != nil {
		return nil, apiclient.ErrUnauthorized().WithCause(err)
	}
	return s.backend.stream(ctx)
}
