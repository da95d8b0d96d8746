package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"credverify/internal/verification/models"
)

// Saver is implemented by both submission stores.
type Saver interface {
	Save(ctx context.Context, rec *models.SubmittedCredentialRecord) error
}

// Seed loads a JSON array of records into store. Every record is validated
// before anything is written.
func Seed(ctx context.Context, store Saver, r io.Reader) (int, error) {
	var records []*models.SubmittedCredentialRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	for i, rec := range records {
		if rec == nil {
			return 0, fmt.Errorf("seed record %d is null", i)
		}
		if rec.SubmissionID.IsNil() {
			return 0, fmt.Errorf("seed record %d has no submission_id", i)
		}
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("seed record %d: %w", i, err)
		}
	}
	for _, rec := range records {
		if err := store.Save(ctx, rec); err != nil {
			return 0, err
		}
	}
	return len(records), nil
}
