// Package cache keeps outward user projections in redis, keyed by email.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
	"github.com/oksasatya/go-user-identity/pkg/helpers"
)

const (
	keyPrefix = "user:profile:"
	genPrefix = "user:profile:gen:"

	// genTTL bounds how long a generation counter outlives its last
	// invalidation. It must exceed any store read a fill waits on.
	genTTL = 24 * time.Hour
)

// setIfGeneration writes the profile only while the generation counter
// still holds the value the reader saw before going to the store.
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if (cur or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// ProfileCache is a read-through cache of users without their password
// hash. Redis errors are logged and treated as misses.
type ProfileCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

func NewProfileCache(rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *ProfileCache {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{rdb: rdb, ttl: ttl, logger: logger}
}

func Key(email string) string { return keyPrefix + email }

func GenerationKey(email string) string { return genPrefix + email }

func (c *ProfileCache) Get(ctx context.Context, email string) (*entity.User, bool) {
	var doc profileDoc
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, Key(email), &doc)
	if err != nil {
		c.logger.WithError(err).Warn("profile cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	u := doc.toUser()
	return &u, true
}

// Generation reports the current invalidation count for email. The second
// result is false when redis cannot be read; callers then skip the fill.
func (c *ProfileCache) Generation(ctx context.Context, email string) (int64, bool) {
	gen, err := c.rdb.Get(ctx, GenerationKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		c.logger.WithError(err).Warn("profile cache generation read failed")
		return 0, false
	}
	return gen, true
}

// Set stores u unless the email was invalidated after gen was read.
func (c *ProfileCache) Set(ctx context.Context, u *entity.User, gen int64) {
	b, err := json.Marshal(fromUser(u))
	if err != nil {
		c.logger.WithError(err).WithField("user_id", u.ID).Warn("profile cache encode failed")
		return
	}
	keys := []string{GenerationKey(u.Email), Key(u.Email)}
	stored, err := setIfGeneration.Run(ctx, c.rdb, keys, gen, b, c.ttl.Milliseconds()).Int64()
	if err != nil {
		c.logger.WithError(err).WithField("user_id", u.ID).Warn("profile cache write failed")
		return
	}
	if stored == 0 {
		c.logger.WithField("user_id", u.ID).Debug("profile cache fill skipped, record changed")
	}
}

// Invalidate bumps each email's generation and drops its cached profile in
// one transaction, so an in-flight fill for the old record is refused.
func (c *ProfileCache) Invalidate(ctx context.Context, emails ...string) {
	if len(emails) == 0 {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range emails {
			pipe.Incr(ctx, GenerationKey(e))
			pipe.Expire(ctx, GenerationKey(e), genTTL)
			pipe.Del(ctx, Key(e))
		}
		return nil
	})
	if err != nil {
		c.logger.WithError(err).Warn("profile cache invalidation failed")
	}
}

// profileDoc is the cached form. It has no password field, so a hash can
// never be written to redis even if a caller forgets to blank it.
type profileDoc struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Addresses []entity.Address `json:"addresses"`
	Phones    []entity.Phone   `json:"phones"`
}

func fromUser(u *entity.User) profileDoc {
	return profileDoc{ID: u.ID, Name: u.Name, Email: u.Email, Addresses: u.Addresses, Phones: u.Phones}
}

func (d profileDoc) toUser() entity.User {
	return entity.User{ID: d.ID, Name: d.Name, Email: d.Email, Addresses: d.Addresses, Phones: d.Phones}
}
