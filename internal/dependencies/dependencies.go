package dependencies

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/neckchi/tripsync/config/domain"
	"github.com/neckchi/tripsync/config/service"
	"github.com/neckchi/tripsync/external"
	"github.com/neckchi/tripsync/internal/acquire"
	"github.com/neckchi/tripsync/internal/database"
	ftpclient "github.com/neckchi/tripsync/internal/ftp"
	httpclient "github.com/neckchi/tripsync/internal/http"
	"github.com/neckchi/tripsync/internal/reconcile"
	env "github.com/neckchi/tripsync/internal/secret"
	log "github.com/sirupsen/logrus"
)

const (
	connectTimeout = 30 * time.Second
	// ledgerExpiry lets a refresh pick up archives republished under the same URL.
	ledgerExpiry = 30 * 24 * time.Hour
)

// Ledger is a download ledger that holds a connection.
type Ledger interface {
	acquire.Ledger
	Close() error
}

// Options locate the inputs the dependencies are built from.
type Options struct {
	EnvFile    string
	ConfigFile string
	BaseDir    string
}

// all dependencies required by this app
type Dependencies struct {
	EnvManager *env.Manager
	Config     *domain.Config
	Paths      domain.Paths
	HTTPClient *httpclient.HttpClient
	Ledger     Ledger
	Acquirer   *acquire.Acquirer
	Reconciler *reconcile.Reconciler
}

// dependenciesInstance holds the singleton instance of Dependencies.
var (
	dependenciesInstance *Dependencies
	once                 sync.Once
	initErr              error
)

// NewDependencies initializes dependencies only once and returns the same instance on subsequent calls.
func NewDependencies(ctx context.Context, opts Options) (*Dependencies, error) {
	once.Do(func() {
		dependenciesInstance, initErr = Build(ctx, opts)
	})
	if initErr != nil {
		return nil, initErr
	}
	return dependenciesInstance, nil
}

// Build wires a fresh set of dependencies.
func Build(ctx context.Context, opts Options) (*Dependencies, error) {
	// Initialize environment manager
	envManager, err := env.NewManager(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	// Load the optional config file over the defaults
	cfg := domain.Default()
	configSvc := &service.ConfigService{Config: cfg, Location: opts.ConfigFile}
	if err := configSvc.Reload(); err != nil {
		return nil, err
	}
	paths, err := cfg.Resolve(opts.BaseDir)
	if err != nil {
		return nil, err
	}
	settings := cfg.Settings()

	// Initialize HTTP client
	httpOpts := []httpclient.HttpFuncOption{
		httpclient.WithCtxTimeout(settings.HTTP.Timeout),
		httpclient.WithMaxRetries(settings.HTTP.MaxRetries),
		httpclient.WithRetryDelay(settings.HTTP.RetryDelay),
		httpclient.WithMaxIdleConns(10),
		httpclient.WithIdleConnTimeout(90 * time.Second),
	}
	if settings.HTTP.UserAgent != "" {
		httpOpts = append(httpOpts, httpclient.WithUserAgent(settings.HTTP.UserAgent))
	}
	if proxy := *envManager.HttpProxy; proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_PROXY: %w", err)
		}
		httpOpts = append(httpOpts, httpclient.WithProxySetup(proxyURL))
	}
	httpClient := httpclient.CreateHttpClientInstance(httpOpts...)

	ledger := newLedger(ctx, envManager)

	layout := acquire.Layout{
		IndexFile:   paths.IndexFile,
		DownloadDir: paths.Download,
		ArchiveDir:  paths.Archive,
		DataDir:     paths.Data,
	}
	mapping := cfg.Mapping()
	log.Infof("Column mapping with %d canonical columns", mapping.Len())
	reconcilerOpts := []reconcile.ReconcilerOption{reconcile.WithProviders(external.NewProviderFactory())}
	if settings.CaseFold {
		reconcilerOpts = append(reconcilerOpts, reconcile.WithCaseFolding())
	}

	return &Dependencies{
		EnvManager: envManager,
		Config:     cfg,
		Paths:      paths,
		HTTPClient: httpClient,
		Ledger:     ledger,
		Acquirer:   acquire.NewAcquirer(layout, httpClient, ledger),
		Reconciler: reconcile.NewReconciler(mapping, reconcilerOpts...),
	}, nil
}

// newLedger prefers redis and falls back to memory when it is unset or unreachable.
func newLedger(ctx context.Context, envManager *env.Manager) Ledger {
	if *envManager.RedisHost == "" {
		return database.NewMemoryLedger()
	}
	redisSettings := database.RedisSettings{
		DB:         envManager.RedisDb,
		DBUser:     envManager.RedisUser,
		DBPassword: envManager.RedisPw,
		Host:       envManager.RedisHost,
		Port:       envManager.RedisPort,
		Expiry:     ledgerExpiry,
	}
	redis, err := database.NewRedisLedger(ctx, redisSettings)
	if err != nil {
		log.Warnf("Redis unavailable, using in-memory download ledger: %v", err)
		return database.NewMemoryLedger()
	}
	return redis
}

// DatabaseSettings reads the database credential file named in the environment.
func (d *Dependencies) DatabaseSettings() (database.Settings, error) {
	creds, err := env.ReadCredentials(*d.EnvManager.DbCredentials)
	if err != nil {
		return database.Settings{}, err
	}
	return database.Settings{
		Driver:      database.Driver(*d.EnvManager.DbDriver),
		Credentials: creds,
		Port:        *d.EnvManager.DbPort,
		Database:    *d.EnvManager.DbName,
		ServiceName: *d.EnvManager.DbServiceName,
		Timeout:     connectTimeout,
	}, nil
}

// FTPSettings reads the ftp credential file named in the environment.
func (d *Dependencies) FTPSettings() (ftpclient.Settings, error) {
	creds, err := env.ReadCredentials(*d.EnvManager.FtpCredentials)
	if err != nil {
		return ftpclient.Settings{}, err
	}
	return ftpclient.Settings{
		Credentials: creds,
		Port:        *d.EnvManager.FtpPort,
		Timeout:     connectTimeout,
	}, nil
}

func (d *Dependencies) Close() error {
	return d.Ledger.Close()
}
