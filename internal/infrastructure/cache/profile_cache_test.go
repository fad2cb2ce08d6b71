package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
)

func TestKeys(t *testing.T) {
	if got := Key("a@x.com"); got != "user:profile:a@x.com" {
		t.Fatalf("Key = %q", got)
	}
	if got := GenerationKey("a@x.com"); got != "user:profile:gen:a@x.com" {
		t.Fatalf("GenerationKey = %q", got)
	}
}

func TestProfileDocDropsPasswordHash(t *testing.T) {
	u := &entity.User{ID: 7, Name: "Ana", Email: "a@x.com", PasswordHash: "$2a$10$xyz",
		Phones: []entity.Phone{{ID: 1, Number: "1234", AreaCode: "011", UserID: 7}}}
	got := fromUser(u).toUser()
	if got.PasswordHash != "" {
		t.Fatal("password hash must not survive caching")
	}
	if got.ID != 7 || got.Email != "a@x.com" || len(got.Phones) != 1 || got.Phones[0].AreaCode != "011" {
		t.Fatalf("unexpected round trip %+v", got)
	}
}

func TestUnreachableRedisIsAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	c := NewProfileCache(rdb, time.Minute, nil)
	ctx := context.Background()

	if _, ok := c.Generation(ctx, "a@x.com"); ok {
		t.Fatal("generation must not be reported when redis is down")
	}
	c.Set(ctx, &entity.User{ID: 1, Email: "a@x.com"}, 0)
	if _, ok := c.Get(ctx, "a@x.com"); ok {
		t.Fatal("expected a miss when redis is down")
	}
	c.Invalidate(ctx, "a@x.com")
	c.Invalidate(ctx)
}
