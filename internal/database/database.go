package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	env "github.com/neckchi/tripsync/internal/secret"
	go_ora "github.com/sijms/go-ora/v2"
	log "github.com/sirupsen/logrus"
)

type Driver string

const (
	MySQL  Driver = "mysql"
	Oracle Driver = "oracle"
)

const (
	defaultMySQLPort  = 3306
	defaultOraclePort = 1521
)

// Settings describes a single database login.
type Settings struct {
	Driver      Driver
	Credentials env.Credentials
	Port        int
	// Database defaults to the user name, one schema per user.
	Database    string
	ServiceName string
	Timeout     time.Duration
}

func (s Settings) database() string {
	if s.Database != "" {
		return s.Database
	}
	return s.Credentials.User
}

// DSN builds the driver specific data source name.
func (s Settings) DSN() (string, error) {
	switch s.Driver {
	case MySQL, "":
		port := s.Port
		if port == 0 {
			port = defaultMySQLPort
		}
		cfg := mysql.NewConfig()
		cfg.User = s.Credentials.User
		cfg.Passwd = s.Credentials.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(s.Credentials.Host, strconv.Itoa(port))
		cfg.DBName = s.database()
		cfg.Timeout = s.Timeout
		return cfg.FormatDSN(), nil
	case Oracle:
		port := s.Port
		if port == 0 {
			port = defaultOraclePort
		}
		service := s.ServiceName
		if service == "" {
			service = s.database()
		}
		//instead of fetching rows one by one, we fetch multiple rows in one network operation
		urlOptions := map[string]string{
			"PREFETCH_ROWS": "500",
		}
		return go_ora.BuildUrl(s.Credentials.Host, port, service, s.Credentials.User, s.Credentials.Password, urlOptions), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", s.Driver)
	}
}

func (s Settings) driverName() string {
	if s.Driver == "" {
		return string(MySQL)
	}
	return string(s.Driver)
}

// Connect opens a connection and verifies it with a ping. Failures are classified,
// logged and returned as *ConnectError.
func Connect(ctx context.Context, s Settings) (*sql.DB, error) {
	dsn, err := s.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(s.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		ce := Classify(err)
		ce.Report()
		return nil, ce
	}
	log.Infof("Connected to database %s at %s", s.database(), s.Credentials.Host)
	return db, nil
}
