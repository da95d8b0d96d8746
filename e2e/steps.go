package e2e

import (
	"context"

	"github.com/cucumber/godog"

	"credverify/e2e/steps/common"
	"credverify/e2e/steps/review"
	"credverify/e2e/steps/verification"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.Reset()
		return ctx, nil
	})

	common.RegisterSteps(ctx, tc)
	verification.RegisterSteps(ctx, tc)
	review.RegisterSteps(ctx, tc)
}
