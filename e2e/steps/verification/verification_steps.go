package verification

import (
	"context"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	AdminGET(path string) error
}

// RegisterSteps registers verify and status step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{tc: tc}

	ctx.Step(`^I verify submission "([^"]*)"$`, steps.verify)
	ctx.Step(`^I force a recheck of submission "([^"]*)"$`, steps.forceRecheck)
	ctx.Step(`^I verify submission "([^"]*)" for types "([^"]*)"$`, steps.verifyTypes)
	ctx.Step(`^I request the status of submission "([^"]*)"$`, steps.status)
	ctx.Step(`^I list the result history of submission "([^"]*)"$`, steps.history)
}

type verificationSteps struct {
	tc TestContext
}

func submissionPath(submissionID, action string) string {
	return "/v1/submissions/" + submissionID + "/" + action
}

func (s *verificationSteps) verify(_ context.Context, submissionID string) error {
	return s.tc.POST(submissionPath(submissionID, "verify"), map[string]any{})
}

func (s *verificationSteps) forceRecheck(_ context.Context, submissionID string) error {
	return s.tc.POST(submissionPath(submissionID, "verify"), map[string]any{"force_recheck": true})
}

func (s *verificationSteps) verifyTypes(_ context.Context, submissionID, types string) error {
	return s.tc.POST(submissionPath(submissionID, "verify"), map[string]any{
		"specific_types": strings.Split(types, ","),
	})
}

func (s *verificationSteps) status(_ context.Context, submissionID string) error {
	return s.tc.GET(submissionPath(submissionID, "status"), nil)
}

func (s *verificationSteps) history(_ context.Context, submissionID string) error {
	return s.tc.AdminGET("/admin/submissions/" + submissionID + "/results?history=true")
}
