package handler

import (
	id "credverify/pkg/domain"
)

// AssignRequest hands an item to a reviewer.
type AssignRequest struct {
	ReviewerID string `json:"reviewer_id"`

	reviewer id.ReviewerID
}

func (r *AssignRequest) Validate() error {
	var err error
	r.reviewer, err = id.ParseReviewerID(r.ReviewerID)
	return err
}

type ApproveRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Notes      string `json:"notes,omitempty"`

	reviewer id.ReviewerID
}

func (r *ApproveRequest) Validate() error {
	var err error
	r.reviewer, err = id.ParseReviewerID(r.ReviewerID)
	return err
}

// RejectRequest carries the mandatory rejection reason. An empty reason is
// refused by the service so the check happens before any storage access.
type RejectRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Reason     string `json:"reason"`

	reviewer id.ReviewerID
}

func (r *RejectRequest) Validate() error {
	var err error
	r.reviewer, err = id.ParseReviewerID(r.ReviewerID)
	return err
}

type EscalateRequest struct {
	Reason string `json:"reason"`
}

func (r *EscalateRequest) Validate() error {
	return nil
}
