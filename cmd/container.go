// container.go
package main

import (
	"context"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"
	"github.com/mlinyun/Peekpa/pkg/catalog"
	"github.com/mlinyun/Peekpa/pkg/catalog/catalogapi"
	"github.com/mlinyun/Peekpa/pkg/config"
	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/events"
	"github.com/mlinyun/Peekpa/pkg/events/eventsamqp"
	"github.com/mlinyun/Peekpa/pkg/fsx"
	"github.com/mlinyun/Peekpa/pkg/fsx/fsxlocal"
	"github.com/mlinyun/Peekpa/pkg/fsx/fsxminio"
	"github.com/mlinyun/Peekpa/pkg/fsx/fsxs3"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/iam/auth/authinfra"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/company/companyapi"
	"github.com/mlinyun/Peekpa/pkg/iam/company/companyinfra"
	"github.com/mlinyun/Peekpa/pkg/iam/company/companysrv"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/iam/user/userapi"
	"github.com/mlinyun/Peekpa/pkg/iam/user/userinfra"
	"github.com/mlinyun/Peekpa/pkg/iam/user/usersrv"
	"github.com/mlinyun/Peekpa/pkg/logx"
	"github.com/mlinyun/Peekpa/pkg/recruit/dashboard"
	"github.com/mlinyun/Peekpa/pkg/recruit/dashboard/dashboardapi"
	"github.com/mlinyun/Peekpa/pkg/recruit/dashboard/dashboardinfra"
	"github.com/mlinyun/Peekpa/pkg/recruit/dashboard/dashboardsrv"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview/interviewapi"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview/interviewinfra"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview/interviewsrv"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation/invitationapi"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation/invitationinfra"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation/invitationsrv"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
	"github.com/mlinyun/Peekpa/pkg/recruit/job/jobapi"
	"github.com/mlinyun/Peekpa/pkg/recruit/job/jobinfra"
	"github.com/mlinyun/Peekpa/pkg/recruit/job/jobsrv"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume/resumeapi"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume/resumeinfra"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume/resumesrv"
	"github.com/mlinyun/Peekpa/pkg/store/memstore"
	"github.com/redis/go-redis/v9"
)

// repositories groups the persistence ports of one store backend
type repositories struct {
	users       user.UserRepository
	avatars     user.AvatarRepository
	companies   company.CompanyRepository
	jobs        job.JobRepository
	resumes     resume.ResumeRepository
	interviews  interview.InterviewRepository
	invitations invitation.InvitationRepository
	dashboard   dashboard.Repository
	tx          dbx.TxManager
	ping        func(ctx context.Context) error
}

// Container holds all application dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB         *sqlx.DB
	Memory     *memstore.Store
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client
	Publisher  events.Publisher
	Catalog    *catalog.Catalog
	broker     *eventsamqp.Publisher
	repos      repositories

	// Services
	TokenService      auth.TokenService
	UserService       *usersrv.UserService
	CompanyService    *companysrv.CompanyService
	JobService        *jobsrv.JobService
	ResumeService     *resumesrv.ResumeService
	InterviewService  *interviewsrv.InterviewService
	InvitationService *invitationsrv.InvitationService
	DashboardService  *dashboardsrv.DashboardService

	// API Handlers
	AuthHandlers       *auth.AuthHandlers
	UserHandlers       *userapi.UserHandlers
	CompanyHandlers    *companyapi.CompanyHandlers
	JobHandlers        *jobapi.JobHandlers
	ResumeHandlers     *resumeapi.ResumeHandlers
	InterviewHandlers  *interviewapi.InterviewHandlers
	InvitationHandlers *invitationapi.InvitationHandlers
	DashboardHandlers  *dashboardapi.DashboardHandlers
	CatalogHandlers    *catalogapi.CatalogHandlers

	// Middleware
	AuthMiddleware *auth.Middleware
	RateLimit      fiber.Handler

	// Background Services
	Sweeper *resumesrv.Sweeper
}

// NewContainer initializes the dependency injection container
func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing dependency container...")

	c := &Container{
		Config: cfg,
	}

	c.initInfrastructure()
	c.initServices()

	logx.Info("✅ Container initialized successfully")
	return c
}

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")
	ctx := context.Background()

	// 1. Store
	c.initStore(ctx)

	// 2. Redis Connection (optional)
	if c.Config.Redis.Enabled {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if _, err := c.Redis.Ping(ctx).Result(); err != nil {
			logx.Fatalf("Failed to connect to Redis: %v", err)
		}
		logx.Info("✅ Redis connected")
	} else {
		logx.Warn("⚠️  Redis disabled, token blacklist and rate limits are kept in memory")
	}

	// 3. File Storage Configuration (local, S3 or MinIO)
	c.initFileStorage(ctx)

	// 4. Event broker
	c.initEvents()

	// 5. Home page catalog
	cat, err := catalog.Load(c.Config.Catalog.File)
	if err != nil {
		logx.Fatalf("Failed to load catalog: %v", err)
	}
	c.Catalog = cat

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initStore(ctx context.Context) {
	if c.Config.Database.Driver == config.DriverMemory {
		s := memstore.New()
		c.Memory = s
		c.repos = repositories{
			users:       s.Users(),
			avatars:     s.Avatars(),
			companies:   s.Companies(),
			jobs:        s.Jobs(),
			resumes:     s.Resumes(),
			interviews:  s.Interviews(),
			invitations: s.Invitations(),
			dashboard:   s.Dashboard(),
			tx:          s,
			ping:        s.Ping,
		}
		logx.Warn("⚠️  Using in-memory store (data is lost on restart)")
		return
	}

	db, err := dbx.Connect(ctx, c.Config.Database)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	c.DB = db
	c.repos = repositories{
		users:       userinfra.NewPostgresUserRepository(db),
		avatars:     userinfra.NewPostgresAvatarRepository(db),
		companies:   companyinfra.NewPostgresCompanyRepository(db),
		jobs:        jobinfra.NewPostgresJobRepository(db),
		resumes:     resumeinfra.NewPostgresResumeRepository(db),
		interviews:  interviewinfra.NewPostgresInterviewRepository(db),
		invitations: invitationinfra.NewPostgresInvitationRepository(db),
		dashboard:   dashboardinfra.NewPostgresDashboardRepository(db),
		tx:          dbx.NewSQLTxManager(db),
		ping:        db.PingContext,
	}
	logx.Infof("✅ Database connected (driver: %s)", c.Config.Database.Driver)
}

func (c *Container) initFileStorage(ctx context.Context) {
	storage := c.Config.Storage

	switch storage.Mode {
	case config.StorageS3:
		cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(storage.S3.Region))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, storage.S3.Bucket, storage.S3.Prefix)
		logx.Infof("✅ S3 file system configured (bucket: %s, region: %s)", storage.S3.Bucket, storage.S3.Region)

	case config.StorageMinio:
		minioFS, err := fsxminio.NewMinioFileSystem(ctx, storage.Minio)
		if err != nil {
			logx.Fatalf("Failed to initialize MinIO file system: %v", err)
		}
		c.FileSystem = minioFS
		logx.Infof("✅ MinIO file system configured (endpoint: %s, bucket: %s)", storage.Minio.Endpoint, storage.Minio.Bucket)

	default:
		localFS, err := fsxlocal.NewLocalFileSystem(storage.UploadDir)
		if err != nil {
			logx.Fatalf("Failed to initialize local file system: %v", err)
		}
		c.FileSystem = localFS
		logx.Infof("✅ Local file system configured (path: %s)", localFS.GetBasePath())
	}
}

func (c *Container) initEvents() {
	if !c.Config.Events.Enabled() {
		c.Publisher = events.NoopPublisher{}
		logx.Info("Domain events disabled (no AMQP_URL)")
		return
	}
	broker, err := eventsamqp.NewPublisher(c.Config.Events)
	if err != nil {
		logx.Fatalf("Failed to connect to AMQP broker: %v", err)
	}
	c.broker = broker
	c.Publisher = broker
	logx.Infof("✅ Publishing domain events to exchange %s", c.Config.Events.Exchange)
}

func (c *Container) initServices() {
	logx.Info("🗄️  Initializing services...")
	r := c.repos
	cfg := c.Config
	mediaPrefix := cfg.Storage.MediaURLPrefix

	// --- Auth infrastructure ---
	passwordSvc := authinfra.NewBcryptPasswordService(cfg.Auth.Password.BcryptCost)
	c.TokenService = auth.NewJWTServiceFromConfig(cfg.Auth.JWT)

	var blacklist auth.TokenBlacklist
	if c.Redis != nil {
		blacklist = authinfra.NewRedisTokenBlacklist(c.Redis)
		c.RateLimit = auth.RateLimit(
			authinfra.NewRedisRateLimiter(c.Redis, cfg.Auth.RateLimit.Limit, cfg.Auth.RateLimit.Window),
			"auth",
		)
	} else {
		blacklist = auth.NewMemoryBlacklist()
		c.RateLimit = limiter.New(limiter.Config{
			Max:          cfg.Auth.RateLimit.Limit,
			Expiration:   cfg.Auth.RateLimit.Window,
			KeyGenerator: func(ctx *fiber.Ctx) string { return ctx.IP() },
			LimitReached: func(*fiber.Ctx) error { return auth.ErrRateLimited() },
		})
	}

	// --- Domain Services ---
	c.UserService = usersrv.NewUserService(
		r.users,
		r.avatars,
		passwordSvc,
		user.PasswordPolicy{MinLength: cfg.Auth.Password.MinLength, MaxLength: cfg.Auth.Password.MaxLength},
		r.tx,
		c.FileSystem,
		mediaPrefix,
	)

	c.CompanyService = companysrv.NewCompanyService(r.companies, r.users, r.jobs, c.UserService, r.tx)

	c.JobService = jobsrv.NewJobService(r.jobs, r.interviews, r.resumes, r.tx, c.Publisher)

	c.ResumeService = resumesrv.NewResumeService(r.resumes, r.tx, c.FileSystem, mediaPrefix)

	c.InterviewService = interviewsrv.NewInterviewService(
		r.interviews,
		r.jobs,
		r.resumes,
		r.users,
		r.invitations,
		r.tx,
		c.Publisher,
	)

	c.InvitationService = invitationsrv.NewInvitationService(
		r.invitations,
		r.interviews,
		r.jobs,
		r.users,
		c.Publisher,
		cfg.Recruit.InvitationDuePeriod(),
	)

	c.DashboardService = dashboardsrv.NewDashboardService(r.dashboard)

	// --- API Handlers ---
	c.AuthMiddleware = auth.NewMiddleware(c.TokenService, blacklist, r.users, cfg.Auth.Cookie.AccessTokenName)
	c.AuthHandlers = auth.NewAuthHandlers(
		auth.NewAuthenticator(r.users, passwordSvc),
		c.UserService,
		c.TokenService,
		blacklist,
		r.users,
		cfg.Auth.Cookie,
	)
	c.UserHandlers = userapi.NewUserHandlers(c.UserService)
	c.CompanyHandlers = companyapi.NewCompanyHandlers(c.CompanyService)
	c.JobHandlers = jobapi.NewJobHandlers(c.JobService)
	c.ResumeHandlers = resumeapi.NewResumeHandlers(c.ResumeService)
	c.InterviewHandlers = interviewapi.NewInterviewHandlers(c.InterviewService)
	c.InvitationHandlers = invitationapi.NewInvitationHandlers(c.InvitationService)
	c.DashboardHandlers = dashboardapi.NewDashboardHandlers(c.DashboardService)
	c.CatalogHandlers = catalogapi.NewCatalogHandlers(c.Catalog, c.JobService, c.CompanyService)

	// --- Background Services ---
	c.Sweeper = resumesrv.NewSweeper(r.resumes, c.FileSystem, mediaPrefix, cfg.Recruit.ResumeSweepInterval)

	logx.Info("✅ All services and handlers initialized")
}

// Ping checks the store
func (c *Container) Ping(ctx context.Context) error {
	return c.repos.ping(ctx)
}

// StartBackgroundServices starts background workers
func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("🔄 Starting background services...")

	if c.Config.Recruit.ResumeSweepInterval > 0 {
		go c.Sweeper.Start(ctx)
		logx.Infof("✅ Resume sweeper started (every %s)", c.Config.Recruit.ResumeSweepInterval)
	}
}

// Cleanup closes all connections and stops workers
func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.broker != nil {
		if err := c.broker.Close(); err != nil {
			logx.Errorf("Error closing AMQP connection: %v", err)
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("✅ Database connection closed")
		}
	}

	// Close Redis connection
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup completed")
}
