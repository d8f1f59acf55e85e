package database

import (
	"context"
	"crypto/md5"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	ledgerNamespace = "tripsync-download"
	poolSize        = 5
	dialTimeout     = 5 * time.Second
)

type RedisSettings struct {
	DB         *int
	DBUser     *string
	DBPassword *string
	Host       *string
	Port       *string
	// Expiry of a ledger entry, zero keeps it forever.
	Expiry time.Duration
}

// RedisLedger records downloaded archive URLs in redis so repeated refreshes skip them.
type RedisLedger struct {
	client *goRedis.Client
	expiry time.Duration
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Constructor to create a redis backed ledger, the connection is verified with a ping
func NewRedisLedger(ctx context.Context, settings RedisSettings) (*RedisLedger, error) {
	if deref(settings.Host) == "" {
		return nil, errors.New("redis host is not configured")
	}
	redisClient := goRedis.NewClient(&goRedis.Options{
		Addr:        net.JoinHostPort(deref(settings.Host), deref(settings.Port)),
		DB:          deref(settings.DB),
		Username:    deref(settings.DBUser),
		Password:    deref(settings.DBPassword),
		PoolSize:    poolSize,
		DialTimeout: dialTimeout,
		MaxRetries:  1,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, err
	}
	log.Infof("Connected to Redis - %s", redisClient)
	return &RedisLedger{client: redisClient, expiry: settings.Expiry}, nil
}

func GenerateUUIDFromString(namespace, key string) string {
	hash := md5.Sum([]byte(namespace))
	namespaceUUID := uuid.Must(uuid.FromBytes(hash[:]))
	generatedUUID := uuid.NewMD5(namespaceUUID, []byte(key))
	return generatedUUID.String()
}

func (r *RedisLedger) Seen(ctx context.Context, url string) (bool, error) {
	n, err := r.client.Exists(ctx, GenerateUUIDFromString(ledgerNamespace, url)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Record stores the archive size under the hashed url. Existing entries are kept.
func (r *RedisLedger) Record(ctx context.Context, url string, size int64) error {
	key := GenerateUUIDFromString(ledgerNamespace, url)
	if err := r.client.SetNX(ctx, key, strconv.FormatInt(size, 10), r.expiry).Err(); err != nil {
		log.Errorf("Error recording %s: %v", url, err)
		return err
	}
	log.Infof("Recorded %s as %s", url, key)
	return nil
}

func (r *RedisLedger) Close() error {
	return r.client.Close()
}
