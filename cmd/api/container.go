// cmd/api/container.go
//
// Composition root. Owns infrastructure (optional Postgres and Redis, the AWS
// dispatch clients) and wires the verification layer end to end. This is the
// only place that knows about every package.
package main

import (
	"context"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/praxis/pkg/clockx"
	"github.com/Abraxas-365/praxis/pkg/config"
	"github.com/Abraxas-365/praxis/pkg/dispatchx"
	"github.com/Abraxas-365/praxis/pkg/dispatchx/dispatchconsole"
	"github.com/Abraxas-365/praxis/pkg/dispatchx/dispatchses"
	"github.com/Abraxas-365/praxis/pkg/dispatchx/dispatchsns"
	"github.com/Abraxas-365/praxis/pkg/logx"
	"github.com/Abraxas-365/praxis/pkg/trust"
	"github.com/Abraxas-365/praxis/pkg/trust/challengestore"
	"github.com/Abraxas-365/praxis/pkg/trust/challengestore/redisstore"
	"github.com/Abraxas-365/praxis/pkg/trust/otpsrv"
	"github.com/Abraxas-365/praxis/pkg/trust/sessiongate"
	"github.com/Abraxas-365/praxis/pkg/trust/sessionjwt"
	"github.com/Abraxas-365/praxis/pkg/trust/sweeper"
	"github.com/Abraxas-365/praxis/pkg/trust/transporthttp"
	"github.com/Abraxas-365/praxis/pkg/trust/trustinfra"
	"github.com/Abraxas-365/praxis/pkg/trust/webhookx"
)

// Container holds shared infrastructure and the wired verification services.
type Container struct {
	Config *config.Config
	Clock  clockx.Clock

	// Infrastructure
	DB    *sqlx.DB
	Redis *redis.Client

	// Verification layer
	Store    trust.ChallengeStore
	OTP      *otpsrv.Service
	Sessions *sessionjwt.Service
	Gate     *sessiongate.Gate
	Handler  *transporthttp.Handler
	Sweeper  *sweeper.Sweeper
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("Initializing application container...")

	c := &Container{Config: cfg, Clock: clockx.System()}

	c.initInfrastructure()
	c.initVerification()

	logx.Info("Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — optional Postgres, optional Redis
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	if c.Config.Database.Enabled {
		db, err := trustinfra.NewPostgresConnection(c.Config.Database)
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		if err := trustinfra.EnsureSchema(context.Background(), db); err != nil {
			logx.Fatalf("Failed to prepare audit schema: %v", err)
		}
		c.DB = db
		logx.Info("Database connected, audit trail persisted")
	} else {
		logx.Info("Database disabled, audit trail falls back to logs")
	}

	if c.Config.Trust.StoreBackend == config.StoreRedis {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
			logx.Fatalf("Failed to connect to Redis: %v (required for the redis challenge store)", err)
		}
		logx.Info("Redis connected")
	}
}

// ---------------------------------------------------------------------------
// Verification layer wiring
// ---------------------------------------------------------------------------

func (c *Container) initVerification() {
	if c.Config.Session.JWTSecret == "" {
		if c.Config.IsProduction() {
			logx.Fatal("SESSION_JWT_SECRET is required in production")
		}
		logx.Warn("SESSION_JWT_SECRET not set, using a development-only default")
		c.Config.Session.JWTSecret = "praxis-dev-secret"
	}

	c.Store = c.buildStore()

	c.Sessions = sessionjwt.NewService(
		c.Config.Session.JWTSecret,
		c.Config.Session.Issuer,
		c.Config.Session.AccessTTL,
		c.Config.Session.RefreshTTL,
		c.Clock,
	)

	c.OTP = otpsrv.NewService(
		c.Store,
		c.buildDispatcher(),
		c.Sessions,
		c.buildAuditRecorder(),
		c.Clock,
		otpsrv.Config{
			CodeLength:        c.Config.Trust.CodeLength,
			ChallengeLifetime: c.Config.Trust.ChallengeLifetime,
			MaxAttempts:       c.Config.Trust.MaxAttempts,
			ResendCooldown:    c.Config.Trust.ResendCooldown,
			DispatchTimeout:   c.Config.Trust.DispatchTimeout,
			DevCodeEcho:       c.Config.Trust.DevCodeEcho,
		},
	)

	c.Gate = sessiongate.New(c.Sessions, c.Clock, c.Config.Session.GraceWindow)
	c.Sweeper = sweeper.New(c.Store, c.Clock, c.Config.Trust.SweepInterval, c.Config.Trust.ChallengeLifetime)

	c.Handler = transporthttp.NewHandler(
		c.OTP,
		c.Sessions,
		sessiongate.NewMiddleware(c.Sessions, c.Gate),
		webhookx.NewMiddleware(webhookx.NewVerifier(c.Config.Webhook.Secrets, c.Config.Webhook.AllowUnsigned)),
	)
}

func (c *Container) buildStore() trust.ChallengeStore {
	switch c.Config.Trust.StoreBackend {
	case config.StoreRedis:
		logx.Info("Challenge store: redis")
		return redisstore.NewRedisStore(c.Redis, "trust:challenge", c.Config.Trust.ChallengeLifetime)
	default:
		logx.Info("Challenge store: in-memory")
		return challengestore.NewMemoryStore()
	}
}

func (c *Container) buildDispatcher() dispatchx.CodeDispatcher {
	switch c.Config.Dispatch.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
			awsConfig.WithRegion(c.Config.Dispatch.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		logx.Infof("Code dispatch: SES email (from %s)", c.Config.Dispatch.FromAddress)
		return dispatchses.NewSESDispatcher(ses.NewFromConfig(awsCfg), c.Config.Dispatch.FromAddress)

	case "sns":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
			awsConfig.WithRegion(c.Config.Dispatch.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		logx.Info("Code dispatch: SNS transactional SMS")
		return dispatchsns.NewSNSDispatcher(sns.NewFromConfig(awsCfg), c.Config.Dispatch.SenderID)

	default:
		if c.Config.IsProduction() {
			logx.Fatal("DISPATCH_PROVIDER must be ses or sns in production")
		}
		logx.Warn("Code dispatch: console (codes are logged, development only)")
		return dispatchconsole.NewConsoleDispatcher()
	}
}

func (c *Container) buildAuditRecorder() trust.AuditRecorder {
	if c.DB != nil {
		return trustinfra.NewPostgresAuditRecorder(c.DB)
	}
	return trustinfra.NewLogAuditRecorder()
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("Starting background services...")
	go c.Sweeper.Start(ctx)
}

func (c *Container) Cleanup() {
	logx.Info("Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		}
	}
}
