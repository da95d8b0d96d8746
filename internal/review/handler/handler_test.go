package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"credverify/internal/review/handler/mocks"
	"credverify/internal/review/models"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
)

type ReviewHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	item    *models.Item
}

func TestReviewHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReviewHandlerSuite))
}

func (s *ReviewHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, nil).Register(s.router)

	item, err := models.NewItem(models.NewItemParams{
		SubmissionID:  id.NewSubmissionID(),
		ResultID:      id.NewResultID(),
		CredentialRef: "license:MX:1234567",
		Type:          models.ReviewNotFound,
		Priority:      models.PriorityHigh,
		Reason:        "license not found",
	}, time.Now().Add(-time.Hour), 48*time.Hour)
	s.Require().NoError(err)
	s.item = item
}

func (s *ReviewHandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ReviewHandlerSuite) path(action string) string {
	p := "/admin/reviews/" + s.item.ID.String()
	if action != "" {
		p += "/" + action
	}
	return p
}

// =============================================================================
// Listing
// =============================================================================

func (s *ReviewHandlerSuite) TestList() {
	s.Run("filters are passed through", func() {
		s.service.EXPECT().ListPending(gomock.Any(), models.ListFilter{Priority: models.PriorityHigh, Limit: 10}).
			Return([]*models.Item{s.item}, nil)

		w := s.do(http.MethodGet, "/admin/reviews?priority=HIGH&limit=10", "")
		s.Equal(http.StatusOK, w.Code)

		var resp ListResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal(1, resp.Count)
		s.Equal("not_found", resp.Items[0].ReviewType)
		s.Contains(resp.Items[0].TimeRemaining, "remaining")
		s.False(resp.Items[0].Overdue)
	})

	s.Run("bad priority", func() {
		w := s.do(http.MethodGet, "/admin/reviews?priority=urgent", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("bad limit", func() {
		w := s.do(http.MethodGet, "/admin/reviews?limit=-3", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *ReviewHandlerSuite) TestGet() {
	s.Run("found", func() {
		s.service.EXPECT().Get(gomock.Any(), s.item.ID).Return(s.item, nil)
		w := s.do(http.MethodGet, s.path(""), "")
		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), s.item.ResultID.String())
	})

	s.Run("unknown", func() {
		s.service.EXPECT().Get(gomock.Any(), s.item.ID).Return(nil, dErrors.New(dErrors.CodeNotFound, "review item not found"))
		w := s.do(http.MethodGet, s.path(""), "")
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("malformed id", func() {
		w := s.do(http.MethodGet, "/admin/reviews/123", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

// =============================================================================
// Actions
// =============================================================================

func (s *ReviewHandlerSuite) TestAssign() {
	s.service.EXPECT().Assign(gomock.Any(), s.item.ID, id.ReviewerID("reviewer-1")).
		DoAndReturn(func(_ context.Context, _ id.ReviewID, reviewer id.ReviewerID) (*models.Item, error) {
			s.item.ApplyAssignment(reviewer, time.Now())
			return s.item, nil
		})

	w := s.do(http.MethodPost, s.path("assign"), `{"reviewer_id":"reviewer-1"}`)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"assigned_to":"reviewer-1"`)

	w = s.do(http.MethodPost, s.path("assign"), `{}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ReviewHandlerSuite) TestApprove() {
	s.service.EXPECT().Approve(gomock.Any(), s.item.ID, id.ReviewerID("reviewer-1"), "called the board").
		DoAndReturn(func(_ context.Context, _ id.ReviewID, _ id.ReviewerID, notes string) (*models.Item, error) {
			s.item.ApplyApproval("reviewer-1", notes, time.Now())
			return s.item, nil
		})

	w := s.do(http.MethodPost, s.path("approve"), `{"reviewer_id":"reviewer-1","notes":"called the board"}`)
	s.Equal(http.StatusOK, w.Code)

	var resp ItemResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("approved", resp.Status)
	s.Empty(resp.TimeRemaining)
	s.NotEmpty(resp.ResolvedAt)
}

func (s *ReviewHandlerSuite) TestReject() {
	s.Run("empty reason is a validation error", func() {
		s.service.EXPECT().Reject(gomock.Any(), s.item.ID, id.ReviewerID("reviewer-1"), "").
			Return(nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required"))

		w := s.do(http.MethodPost, s.path("reject"), `{"reviewer_id":"reviewer-1","reason":""}`)
		s.Equal(http.StatusBadRequest, w.Code)
		s.Contains(w.Body.String(), "rejection reason is required")
	})

	s.Run("already resolved", func() {
		s.service.EXPECT().Reject(gomock.Any(), s.item.ID, gomock.Any(), "fake").
			Return(nil, dErrors.New(dErrors.CodeInvariantViolation, "cannot resolve a review item that is already approved"))

		w := s.do(http.MethodPost, s.path("reject"), `{"reviewer_id":"reviewer-1","reason":"fake"}`)
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("unknown fields are refused", func() {
		w := s.do(http.MethodPost, s.path("reject"), `{"reviewer_id":"reviewer-1","verdict":"no"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *ReviewHandlerSuite) TestEscalate() {
	s.service.EXPECT().Escalate(gomock.Any(), s.item.ID, "needs senior").
		DoAndReturn(func(_ context.Context, _ id.ReviewID, reason string) (*models.Item, error) {
			s.item.ApplyEscalation(reason, time.Now())
			return s.item, nil
		})

	w := s.do(http.MethodPost, s.path("escalate"), `{"reason":"needs senior"}`)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"escalated"`)
	s.Contains(w.Body.String(), `"priority":"high"`)
}
