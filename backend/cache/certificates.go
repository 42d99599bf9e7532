// Package cache holds the read-through cache used by public certificate
// verification. Certificates never change after issuance, so entries are
// only ever written, never invalidated.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coursetrack/backend/models"
	"coursetrack/backend/utils"

	"github.com/redis/go-redis/v9"
)

type CertificateCache interface {
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, number string) (*models.Certificate, error)
	Set(ctx context.Context, cert *models.Certificate) error
	Close() error
}

type redisCertificateCache struct {
	log    *utils.Logger
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCertificateCache connects to addr and fails fast when the server
// does not answer a ping.
func NewRedisCertificateCache(addr, password string, ttl time.Duration, log *utils.Logger) (CertificateCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCertificateCache{
		log:    log.With("cache", "CertificateCache"),
		rdb:    rdb,
		ttl:    ttl,
		prefix: "certificate:",
	}, nil
}

func (c *redisCertificateCache) key(number string) string {
	return c.prefix + number
}

func (c *redisCertificateCache) Get(ctx context.Context, number string) (*models.Certificate, error) {
	raw, err := c.rdb.Get(ctx, c.key(number)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cert models.Certificate
	if err := json.Unmarshal(raw, &cert); err != nil {
		c.log.Warn("dropping undecodable cache entry", "certificate_number", number, "error", err)
		_ = c.rdb.Del(ctx, c.key(number)).Err()
		return nil, nil
	}
	return &cert, nil
}

func (c *redisCertificateCache) Set(ctx context.Context, cert *models.Certificate) error {
	raw, err := json.Marshal(cert)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(cert.CertificateNumber), raw, c.ttl).Err()
}

func (c *redisCertificateCache) Close() error {
	return c.rdb.Close()
}

type nopCertificateCache struct{}

// NewNopCertificateCache is used when no redis address is configured.
func NewNopCertificateCache() CertificateCache { return nopCertificateCache{} }

func (nopCertificateCache) Get(context.Context, string) (*models.Certificate, error) { return nil, nil }
func (nopCertificateCache) Set(context.Context, *models.Certificate) error           { return nil }
func (nopCertificateCache) Close() error                                              { return nil }
