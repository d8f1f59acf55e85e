package ftpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"
	env "github.com/neckchi/tripsync/internal/secret"
	log "github.com/sirupsen/logrus"
)

const defaultPort = 21

type Settings struct {
	Credentials env.Credentials
	Port        int
	Timeout     time.Duration
	// TLSConfig overrides the explicit TLS setup, ServerName is filled from the host when empty.
	TLSConfig *tls.Config
}

// Address joins host and port, falling back to the standard control port.
func Address(host string, port int) string {
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (s Settings) tlsConfig() *tls.Config {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if s.TLSConfig != nil {
		cfg = s.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = s.Credentials.Host
	}
	return cfg
}

func (s Settings) dialOptions(ctx context.Context) []ftp.DialOption {
	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithExplicitTLS(s.tlsConfig()),
	}
	if s.Timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(s.Timeout))
	}
	return opts
}

// Connect dials the server, upgrades the control connection with AUTH TLS and logs in.
// The caller owns the returned connection and must Quit it.
func Connect(ctx context.Context, s Settings) (*ftp.ServerConn, error) {
	addr := Address(s.Credentials.Host, s.Port)
	conn, err := ftp.Dial(addr, s.dialOptions(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("error connecting to ftp server %s: %w", addr, err)
	}
	if err := conn.Login(s.Credentials.User, s.Credentials.Password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("ftp login as %s failed: %w", s.Credentials.User, err)
	}
	log.Infof("Connected to ftp server %s as %s", addr, s.Credentials.User)
	return conn, nil
}
