package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/guardrail"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	GuardrailKeyPattern           = "guardrail:%s"
	GuardrailGenerationKeyPattern = "guardrail:gen:%s"

	defaultTTL      = 5 * time.Minute
	defaultLocalTTL = 30 * time.Second
	generationTTL   = 24 * time.Hour
)

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleFill is returned by SaveGuardrail when the guardrail was
	// invalidated after the fill token was taken.
	ErrStaleFill = errors.New("cache fill is stale")
)

// saveIfCurrent stores KEYS[1] only while the generation in KEYS[2] still
// matches the one the fill started from.
var saveIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	RedisClient() *redis.Client

	GetGuardrail(ctx context.Context, id string) (*guardrail.Guardrail, error)
	// FillToken must be taken before the guardrail is read from the
	// repository on a miss, and handed to SaveGuardrail.
	FillToken(ctx context.Context, id string) (FillToken, error)
	SaveGuardrail(ctx context.Context, g *guardrail.Guardrail, token FillToken) error
	InvalidateGuardrail(ctx context.Context, id string) error
	// ForgetLocal drops the in-process copy only. Used when another instance
	// announces a change it already removed from redis.
	ForgetLocal(id string)
}

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
	TTL      time.Duration
}

type client struct {
	redisClient *redis.Client
	local       *TTLMap[string]
	localGens   *Generations
	ttl         time.Duration
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	redisClient := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return NewClientFromRedis(redisClient, config.TTL), nil
}

// NewClientFromRedis wraps an existing connection without pinging it.
func NewClientFromRedis(redisClient *redis.Client, ttl time.Duration) Client {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	localTTL := defaultLocalTTL
	if ttl < localTTL {
		localTTL = ttl
	}
	return &client{
		redisClient: redisClient,
		local:       NewTTLMap[string](localTTL),
		localGens:   NewGenerations(),
		ttl:         ttl,
	}
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	if value, ok := c.local.Get(key); ok {
		return value, nil
	}
	gen := c.localGens.Current(key)
	value, err := c.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	c.localGens.IfCurrent(key, gen, func() { c.local.Set(key, value) })
	return value, nil
}

func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.redisClient.Set(ctx, key, value, expiration).Err(); err != nil {
		return err
	}
	c.local.Set(key, value)
	return nil
}

func (c *client) Delete(ctx context.Context, key string) error {
	err := c.redisClient.Del(ctx, key).Err()
	c.forget(key)
	return err
}

func (c *client) forget(key string) {
	c.localGens.Bump(key, func() { c.local.Delete(key) })
}

func (c *client) RedisClient() *redis.Client {
	return c.redisClient
}

func (c *client) GetGuardrail(ctx context.Context, id string) (*guardrail.Guardrail, error) {
	raw, err := c.Get(ctx, fmt.Sprintf(GuardrailKeyPattern, id))
	if err != nil {
		return nil, err
	}
	var g guardrail.Guardrail
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("failed to decode cached guardrail: %w", err)
	}
	return &g, nil
}

func (c *client) FillToken(ctx context.Context, id string) (FillToken, error) {
	key := fmt.Sprintf(GuardrailKeyPattern, id)
	token := FillToken{Local: c.localGens.Current(key)}
	remote, err := c.redisClient.Get(ctx, fmt.Sprintf(GuardrailGenerationKeyPattern, id)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return FillToken{}, fmt.Errorf("failed to read guardrail generation: %w", err)
	}
	token.Remote = remote
	return token, nil
}

func (c *client) SaveGuardrail(ctx context.Context, g *guardrail.Guardrail, token FillToken) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode guardrail: %w", err)
	}
	key := fmt.Sprintf(GuardrailKeyPattern, g.ID)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	stored, err := saveIfCurrent.Run(ctx, c.redisClient,
		[]string{key, fmt.Sprintf(GuardrailGenerationKeyPattern, g.ID)},
		strconv.FormatInt(token.Remote, 10), string(data), strconv.FormatInt(c.ttl.Milliseconds(), 10),
	).Int64()
	if err != nil {
		return err
	}
	if stored == 0 {
		return ErrStaleFill
	}
	if !c.localGens.IfCurrent(key, token.Local, func() { c.local.Set(key, string(data)) }) {
		return ErrStaleFill
	}
	return nil
}

// InvalidateGuardrail bumps the generation before deleting so that fills
// started earlier can no longer write the old copy back.
func (c *client) InvalidateGuardrail(ctx context.Context, id string) error {
	genKey := fmt.Sprintf(GuardrailGenerationKeyPattern, id)
	if err := c.redisClient.Incr(ctx, genKey).Err(); err != nil {
		c.forget(fmt.Sprintf(GuardrailKeyPattern, id))
		return err
	}
	if err := c.redisClient.Expire(ctx, genKey, generationTTL).Err(); err != nil {
		c.forget(fmt.Sprintf(GuardrailKeyPattern, id))
		return err
	}
	return c.Delete(ctx, fmt.Sprintf(GuardrailKeyPattern, id))
}

func (c *client) ForgetLocal(id string) {
	c.forget(fmt.Sprintf(GuardrailKeyPattern, id))
}
