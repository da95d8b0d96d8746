package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"credverify/internal/verification/models"
	id "credverify/pkg/domain"
)

const keyPrefix = "credverify:status:"

// Redis stores statuses as JSON values with a status-dependent expiry.
type Redis struct {
	client redis.UniversalClient
	ttls   TTLs
}

func NewRedis(client redis.UniversalClient, ttls TTLs) *Redis {
	return &Redis{client: client, ttls: ttls.withDefaults()}
}

func key(submissionID id.SubmissionID) string {
	return keyPrefix + submissionID.String()
}

func (c *Redis) Get(ctx context.Context, submissionID id.SubmissionID) (*models.OverallVerification, bool, error) {
	raw, err := c.client.Get(ctx, key(submissionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached status: %w", err)
	}
	var status models.OverallVerification
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, false, fmt.Errorf("decode cached status: %w", err)
	}
	return &status, true, nil
}

func (c *Redis) Set(ctx context.Context, status *models.OverallVerification) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	if err := c.client.Set(ctx, key(status.SubmissionID), raw, c.ttls.For(status.Status)).Err(); err != nil {
		return fmt.Errorf("set cached status: %w", err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context, submissionID id.SubmissionID) error {
	if err := c.client.Del(ctx, key(submissionID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached status: %w", err)
	}
	return nil
}
