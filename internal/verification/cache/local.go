package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"credverify/internal/verification/models"
	id "credverify/pkg/domain"
)

// Local is an in-process cache for single-instance deployments.
type Local struct {
	cache *gocache.Cache
	ttls  TTLs
}

func NewLocal(ttls TTLs) *Local {
	ttls = ttls.withDefaults()
	return &Local{
		cache: gocache.New(ttls.Terminal, time.Minute),
		ttls:  ttls,
	}
}

func (c *Local) Get(_ context.Context, submissionID id.SubmissionID) (*models.OverallVerification, bool, error) {
	v, ok := c.cache.Get(submissionID.String())
	if !ok {
		return nil, false, nil
	}
	cached := v.(models.OverallVerification)
	cached.Credentials = append([]models.CredentialStatus(nil), cached.Credentials...)
	return &cached, true, nil
}

func (c *Local) Set(_ context.Context, status *models.OverallVerification) error {
	stored := *status
	stored.Credentials = append([]models.CredentialStatus(nil), status.Credentials...)
	c.cache.Set(status.SubmissionID.String(), stored, c.ttls.For(status.Status))
	return nil
}

func (c *Local) Invalidate(_ context.Context, submissionID id.SubmissionID) error {
	c.cache.Delete(submissionID.String())
	return nil
}
