package redis

import (
	"context"
	"strings"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"
	"github.com/redis/go-redis/v9"
)

var (
	// Client is a universal client covering single-node, cluster and
	// sentinel deployments. Nil when Redis is not configured; callers
	// check IsAvailable and degrade to uncached behavior.
	Client redis.UniversalClient
	ctx    = context.Background()
)

// RedisConfig holds the Redis connection configuration.
type RedisConfig struct {
	Addresses    []string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int

	RouteByLatency bool
	RouteRandomly  bool

	// MasterName switches the client into sentinel mode; Addresses are
	// then sentinel endpoints.
	MasterName       string
	SentinelPassword string
}

// Initialize connects the universal client. Configuration comes from the
// REDIS settings section:
//
//	REDIS:
//	  ADDRESSES: "redis1:6379,redis2:6379"   # or single ADDRESS
//	  PASSWORD: ""
//	  MASTER_NAME: ""                        # set for sentinel
//
// A missing configuration or failed ping is not an error: the schema cache
// and rate limiting switch off and the service keeps running.
func Initialize() error {
	config := loadConfig()

	if len(config.Addresses) == 0 {
		log.Info("Redis not configured, schema cache and rate limiting disabled")
		return nil
	}

	// NewUniversalClient picks the concrete client: failover when
	// MasterName is set, cluster for multiple addresses, plain otherwise.
	Client = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:            config.Addresses,
		Password:         config.Password,
		DB:               config.DB,
		MaxRetries:       config.MaxRetries,
		DialTimeout:      config.DialTimeout,
		ReadTimeout:      config.ReadTimeout,
		WriteTimeout:     config.WriteTimeout,
		PoolSize:         config.PoolSize,
		MinIdleConns:     config.MinIdleConns,
		RouteByLatency:   config.RouteByLatency,
		RouteRandomly:    config.RouteRandomly,
		MasterName:       config.MasterName,
		SentinelPassword: config.SentinelPassword,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(pingCtx).Err(); err != nil {
		log.Warning("Redis unreachable: %v. Schema cache and rate limiting disabled", err)
		Client = nil
		return nil
	}

	switch {
	case config.MasterName != "":
		log.Info("Redis sentinel connected, master %s", config.MasterName)
	case len(config.Addresses) > 1:
		log.Info("Redis cluster connected, %d nodes", len(config.Addresses))
	default:
		log.Info("Redis connected at %s", config.Addresses[0])
	}
	return nil
}

func loadConfig() RedisConfig {
	config := RedisConfig{
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	}

	config.Addresses = splitAddresses(settings.Get("REDIS.ADDRESSES").String())
	if len(config.Addresses) == 0 {
		config.Addresses = splitAddresses(settings.Get("REDIS.ADDRESS").String())
	}

	config.Password = settings.Get("REDIS.PASSWORD").String()
	config.DB = settings.Get("REDIS.DB").Int()

	if poolSize := settings.Get("REDIS.POOL_SIZE").Int(); poolSize > 0 {
		config.PoolSize = poolSize
	}
	if minIdle := settings.Get("REDIS.MIN_IDLE_CONNS").Int(); minIdle > 0 {
		config.MinIdleConns = minIdle
	}
	if maxRetries := settings.Get("REDIS.MAX_RETRIES").Int(); maxRetries > 0 {
		config.MaxRetries = maxRetries
	}

	config.RouteByLatency = settings.Get("REDIS.ROUTE_BY_LATENCY").Bool()
	config.RouteRandomly = settings.Get("REDIS.ROUTE_RANDOMLY").Bool()
	config.MasterName = settings.Get("REDIS.MASTER_NAME").String()
	config.SentinelPassword = settings.Get("REDIS.SENTINEL_PASSWORD").String()

	return config
}

// splitAddresses parses a comma-separated address list, dropping empties.
func splitAddresses(raw string) []string {
	var addresses []string
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addresses = append(addresses, addr)
		}
	}
	return addresses
}

// IsAvailable reports whether Redis is connected and responding.
func IsAvailable() bool {
	if Client == nil {
		return false
	}
	return Client.Ping(ctx).Err() == nil
}

// Close gracefully closes the Redis connection.
func Close() error {
	if Client != nil {
		return Client.Close()
	}
	return nil
}
