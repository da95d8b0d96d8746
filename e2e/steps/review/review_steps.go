package review

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	AdminGET(path string) error
	AdminPOST(path string, body any) error
	GetResponseField(field string) (any, error)
	Remember(key, value string)
	Recall(key string) (string, bool)
}

const reviewKey = "review_id"

// RegisterSteps registers manual review queue step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &reviewSteps{tc: tc}

	ctx.Step(`^I list pending reviews with priority "([^"]*)"$`, steps.listWithPriority)
	ctx.Step(`^I list pending reviews without the admin token$`, steps.listWithoutToken)
	ctx.Step(`^I pick the open review of submission "([^"]*)"$`, steps.pickOpenReview)
	ctx.Step(`^I assign the review to "([^"]*)"$`, steps.assign)
	ctx.Step(`^I approve the review as "([^"]*)"$`, steps.approve)
	ctx.Step(`^I reject the review as "([^"]*)" with reason "([^"]*)"$`, steps.reject)
	ctx.Step(`^I reject the review as "([^"]*)" without a reason$`, steps.rejectWithoutReason)
	ctx.Step(`^I escalate the review with reason "([^"]*)"$`, steps.escalate)
}

type reviewSteps struct {
	tc TestContext
}

func (s *reviewSteps) listWithPriority(_ context.Context, priority string) error {
	return s.tc.AdminGET("/admin/reviews?priority=" + priority)
}

func (s *reviewSteps) listWithoutToken(_ context.Context) error {
	return s.tc.GET("/admin/reviews", nil)
}

// pickOpenReview scans the open queue for the submission's item and
// remembers its id.
func (s *reviewSteps) pickOpenReview(_ context.Context, submissionID string) error {
	if err := s.tc.AdminGET("/admin/reviews?limit=500"); err != nil {
		return err
	}
	items, err := s.tc.GetResponseField("items")
	if err != nil {
		return err
	}
	list, _ := items.([]any)
	for _, raw := range list {
		item, _ := raw.(map[string]any)
		if item["submission_id"] == submissionID {
			s.tc.Remember(reviewKey, fmt.Sprint(item["id"]))
			return nil
		}
	}
	return fmt.Errorf("no open review for submission %s", submissionID)
}

func (s *reviewSteps) reviewPath(action string) (string, error) {
	reviewID, ok := s.tc.Recall(reviewKey)
	if !ok {
		return "", fmt.Errorf("no review picked in this scenario")
	}
	return "/admin/reviews/" + reviewID + "/" + action, nil
}

func (s *reviewSteps) act(action string, body map[string]string) error {
	path, err := s.reviewPath(action)
	if err != nil {
		return err
	}
	return s.tc.AdminPOST(path, body)
}

func (s *reviewSteps) assign(_ context.Context, reviewer string) error {
	return s.act("assign", map[string]string{"reviewer_id": reviewer})
}

func (s *reviewSteps) approve(_ context.Context, reviewer string) error {
	return s.act("approve", map[string]string{"reviewer_id": reviewer, "notes": "checked against source document"})
}

func (s *reviewSteps) reject(_ context.Context, reviewer, reason string) error {
	return s.act("reject", map[string]string{"reviewer_id": reviewer, "reason": reason})
}

func (s *reviewSteps) rejectWithoutReason(_ context.Context, reviewer string) error {
	return s.act("reject", map[string]string{"reviewer_id": reviewer})
}

func (s *reviewSteps) escalate(_ context.Context, reason string) error {
	return s.act("escalate", map[string]string{"reason": reason})
}
