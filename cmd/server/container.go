package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/talentdesk/internal/ai/embeddings"
	"github.com/Abraxas-365/talentdesk/internal/ai/resumeparser"
	"github.com/Abraxas-365/talentdesk/internal/config"
	"github.com/Abraxas-365/talentdesk/internal/database"
	"github.com/Abraxas-365/talentdesk/pkg/fsx"
	"github.com/Abraxas-365/talentdesk/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/talentdesk/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationapi"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationsrv"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidateapi"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidateinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidatesrv"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/Abraxas-365/talentdesk/recruitment/client/clientapi"
	"github.com/Abraxas-365/talentdesk/recruitment/client/clientinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/client/clientsrv"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/Abraxas-365/talentdesk/recruitment/events/eventsapi"
	"github.com/Abraxas-365/talentdesk/recruitment/events/eventsinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/resumeapi"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/resumeinfra"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/resumesrv"
	"github.com/Abraxas-365/talentdesk/recruitment/resume/worker"
	"github.com/Abraxas-365/talentdesk/recruitment/stats"
	"github.com/Abraxas-365/talentdesk/recruitment/stats/statsapi"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	resumeQueueName  = "talentdesk:resume_jobs"
	eventsChannel    = "talentdesk:events"
	memoryQueueDepth = 1024
)

// Container holds all application dependencies
type Container struct {
	Config *config.ServerConfig

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	Broker     events.Broker
	JobQueue   resume.JobQueue

	// Repositories
	users        user.Repository
	candidates   candidate.Repository
	applications application.Repository
	clients      client.Repository
	jobs         resume.JobRepository
	revocations  auth.RevocationStore

	// Services
	TokenService       auth.TokenService
	AuthService        *auth.AuthService
	CandidateService   *candidatesrv.CandidateService
	ApplicationService *applicationsrv.ApplicationService
	ClientService      *clientsrv.ClientService
	ResumeService      *resumesrv.Service
	StatsService       *stats.Service
	ResumeWorker       *worker.ResumeWorker

	// API Handlers
	AuthHandlers        *auth.AuthHandlers
	CandidateHandlers   *candidateapi.Handlers
	ApplicationHandlers *applicationapi.ApplicationHandlers
	ClientHandlers      *clientapi.ClientHandlers
	ResumeHandlers      *resumeapi.ResumeHandlers
	EventHandlers       *eventsapi.Handlers
	StatsHandlers       *statsapi.Handlers

	// Middleware
	AuthMiddleware *auth.UnifiedAuthMiddleware
}

// NewContainer initializes the dependency injection container
func NewContainer(ctx context.Context, cfg *config.ServerConfig) (*Container, error) {
	c := &Container{Config: cfg}
	if err := c.initInfrastructure(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initRepositories()
	c.initServices()
	c.initHandlers()
	if err := c.seedAdmin(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	// 1. Database Connection
	if cfg.StorageDriver == config.DriverPostgres {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		c.DB = db
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// 2. Redis Connection
	if cfg.QueueDriver == config.DriverRedis {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       0,
		})
		if _, err := c.Redis.Ping(ctx).Result(); err != nil {
			logx.Warnf("Failed to connect to Redis: %v", err)
		}
		c.JobQueue = resumeinfra.NewRedisQueue(c.Redis, resumeQueueName)
		c.Broker = eventsinfra.NewRedisBroker(c.Redis, eventsChannel)
		c.revocations = auth.NewRedisRevocationStore(c.Redis)
	} else {
		c.JobQueue = resumeinfra.NewMemoryQueue(memoryQueueDepth)
		c.Broker = eventsinfra.NewMemoryBroker()
		c.revocations = auth.NewMemoryRevocationStore()
	}

	// 3. File storage
	switch cfg.FileDriver {
	case config.DriverS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		c.FileSystem = fsxs3.NewS3FileSystem(s3.NewFromConfig(awsCfg), cfg.AWSBucket, cfg.AWSPrefix)
	default:
		local, err := fsxlocal.NewLocalFileSystem(cfg.LocalDir)
		if err != nil {
			return err
		}
		c.FileSystem = local
	}

	logx.Infof("Infrastructure ready: storage=%s queue=%s files=%s", cfg.StorageDriver, cfg.QueueDriver, cfg.FileDriver)
	return nil
}

func (c *Container) initRepositories() {
	if c.DB != nil {
		c.users = userinfra.NewPostgresUserRepository(c.DB)
		c.candidates = candidateinfra.NewPostgresCandidateRepository(c.DB)
		c.applications = applicationinfra.NewPostgresApplicationRepository(c.DB)
		c.clients = clientinfra.NewPostgresClientRepository(c.DB)
		c.jobs = resumeinfra.NewPostgresJobRepository(c.DB)
		return
	}

	logx.Warn("Using in-memory repositories, data is lost on restart")
	c.users = userinfra.NewMemoryUserRepository()
	c.candidates = candidateinfra.NewMemoryCandidateRepository()
	c.applications = applicationinfra.NewMemoryApplicationRepository()
	c.clients = clientinfra.NewMemoryClientRepository()
	c.jobs = resumeinfra.NewMemoryJobRepository()
}

func (c *Container) initServices() {
	cfg := c.Config

	// --- IAM ---
	authCfg := auth.DefaultConfig()
	authCfg.JWTSecret = cfg.JWTSecret
	authCfg.AccessTokenTTL = cfg.AccessTokenTTL
	c.TokenService = auth.NewJWTService(authCfg)
	c.AuthService = auth.NewAuthService(c.users, c.TokenService, c.revocations)

	// --- Recruitment ---
	c.ClientService = clientsrv.NewClientService(c.clients,
		clientsrv.WithEvents(c.Broker),
		clientsrv.WithRegistrationURL(cfg.RegistrationURL),
		clientsrv.WithAccountRegistrar(client.AccountRegistrarFunc(c.registerClientAccount)),
	)

	// the candidate service counts applications through the repository so
	// the two services do not depend on each other
	c.CandidateService = candidatesrv.NewCandidateService(c.candidates,
		candidatesrv.WithApplicationCounter(c.applications),
		candidatesrv.WithEvents(c.Broker),
	)

	c.ApplicationService = applicationsrv.NewApplicationService(c.applications,
		applicationsrv.WithCandidateChecker(c.CandidateService),
		applicationsrv.WithClientChecker(c.ClientService),
		applicationsrv.WithEvents(c.Broker),
	)

	var resumeOpts []resumesrv.Option
	resumeOpts = append(resumeOpts, resumesrv.WithEvents(c.Broker))
	if cfg.EmbeddingsEnabled {
		resumeOpts = append(resumeOpts, resumesrv.WithEmbedder(embeddings.NewEmbeddingsGenerator(cfg.OpenAIKey)))
	}
	c.ResumeService = resumesrv.NewService(c.jobs, c.JobQueue, c.FileSystem, c.resumeParser(), resumeOpts...)
	c.ResumeWorker = worker.NewResumeWorker(c.ResumeService, c.JobQueue, cfg.Workers)

	c.StatsService = stats.NewService(c.CandidateService, c.ApplicationService, c.ClientService, c.ResumeService)
}

func (c *Container) resumeParser() resume.Parser {
	if c.Config.OpenAIKey == "" {
		logx.Warn("OPENAI_API_KEY is not set, resumes are parsed heuristically")
		return resumeparser.NewHeuristicParser()
	}
	return resumeparser.NewResumeParser(c.Config.OpenAIKey)
}

// registerClientAccount gives a client that accepted its invitation a
// read-only login scoped to that client
func (c *Container) registerClientAccount(ctx context.Context, clientID kernel.ClientID, account client.Account) error {
	_, err := c.AuthService.CreateUser(ctx, auth.SeedUser{
		Username: account.Username,
		Password: account.Password,
		Email:    account.Email,
		FullName: account.FullName,
		Role:     user.RoleViewer,
		ClientID: clientID,
	})
	return err
}

func (c *Container) initHandlers() {
	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService, c.revocations)

	c.AuthHandlers = auth.NewAuthHandlers(c.AuthService)
	c.CandidateHandlers = candidateapi.NewHandlers(c.CandidateService)
	c.ApplicationHandlers = applicationapi.NewApplicationHandlers(c.ApplicationService)
	c.ClientHandlers = clientapi.NewClientHandlers(c.ClientService)
	c.ResumeHandlers = resumeapi.NewResumeHandlers(c.ResumeService)
	c.EventHandlers = eventsapi.NewHandlers(c.Broker, eventsapi.DefaultKeepAlive)
	c.StatsHandlers = statsapi.NewHandlers(c.StatsService)
}

// seedAdmin makes sure someone can log in to a fresh install
func (c *Container) seedAdmin(ctx context.Context) error {
	password := c.Config.AdminPassword
	if password == "" {
		password = uuid.NewString()
		logx.Warnf("ADMIN_PASSWORD is not set, generated password for %s: %s", c.Config.AdminUsername, password)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := c.AuthService.EnsureUser(ctx, auth.SeedUser{
		Username: c.Config.AdminUsername,
		Password: password,
		FullName: "Administrator",
		Role:     user.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}

// Ping reports the health of the backing services
func (c *Container) Ping(ctx context.Context) map[string]bool {
	status := map[string]bool{}
	if c.DB != nil {
		status["db"] = c.DB.PingContext(ctx) == nil
	}
	if c.Redis != nil {
		status["redis"] = c.Redis.Ping(ctx).Err() == nil
	}
	return status
}

func (c *Container) Close() {
	if closer, ok := c.Broker.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logx.Warnf("Failed to close event broker: %v", err)
		}
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
