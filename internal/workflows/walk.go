package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/campusnav/internal/core/domain"
)

// WalkInput is the input for the simulated walk workflow.
type WalkInput struct {
	SessionID string
	// Interval between steps; the walker covers one route edge per tick.
	Interval time.Duration
	// MaxSteps bounds the walk when the session never arrives.
	MaxSteps int
	// Reroute replans from the current location before every step.
	Reroute bool
}

// WalkResult summarises a finished walk.
type WalkResult struct {
	Steps   int
	Arrived bool
	Ended   bool // the session was ended or expired before arrival
}

// WorkflowID is the workflow ID used for a session's simulated walk,
// so at most one walk runs per session.
func WorkflowID(sessionID string) string {
	return "walk-" + sessionID
}

// SimulatedWalkWorkflow moves a navigation session along its route on a fixed interval.
// Each tick queues an advance command (preceded by a reroute when requested) and the
// workflow stops once the stored session reports arrival or disappears.
func SimulatedWalkWorkflow(ctx workflow.Context, input WalkInput) (WalkResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting simulated walk", "sessionID", input.SessionID, "interval", input.Interval)

	if input.Interval <= 0 {
		input.Interval = 4 * time.Second
	}
	if input.MaxSteps <= 0 {
		input.MaxSteps = 500
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var result WalkResult
	for {
		var status SessionStatus
		if err := workflow.ExecuteActivity(ctx, "SessionStatus", input.SessionID).Get(ctx, &status); err != nil {
			return result, err
		}
		if !status.Found {
			result.Ended = true
			logger.Info("Session gone, stopping walk", "steps", result.Steps)
			return result, nil
		}
		if status.Arrived {
			result.Arrived = true
			logger.Info("Walker arrived", "steps", result.Steps, "destination", status.Destination)
			return result, nil
		}
		if result.Steps >= input.MaxSteps {
			return result, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("session %s did not arrive after %d steps", input.SessionID, result.Steps),
				"MaxStepsExceeded", nil)
		}

		if err := workflow.Sleep(ctx, input.Interval); err != nil {
			return result, err
		}

		if input.Reroute {
			reroute := domain.SessionCommand{SessionID: input.SessionID, Kind: domain.CommandReroute}
			if err := workflow.ExecuteActivity(ctx, "SendCommand", reroute).Get(ctx, nil); err != nil {
				return result, err
			}
		}
		advance := domain.SessionCommand{SessionID: input.SessionID, Kind: domain.CommandAdvance}
		if err := workflow.ExecuteActivity(ctx, "SendCommand", advance).Get(ctx, nil); err != nil {
			return result, err
		}
		result.Steps++
	}
}
