// Package stepfunctions runs the pipeline on AWS Step Functions.
package stepfunctions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/dukex/hl7autoct/pkg/engine"
	"github.com/dukex/hl7autoct/pkg/models"
)

const (
	historyPageSize = 1000
	// maxHistoryPages bounds the history read per poll. Runs of this pipeline
	// emit a few dozen events, so the limit is only hit by runaway retries.
	maxHistoryPages = 10
)

// API is the subset of the Step Functions client used by the engine.
type API interface {
	StartExecution(ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
	DescribeExecution(ctx context.Context, params *sfn.DescribeExecutionInput, optFns ...func(*sfn.Options)) (*sfn.DescribeExecutionOutput, error)
	GetExecutionHistory(ctx context.Context, params *sfn.GetExecutionHistoryInput, optFns ...func(*sfn.Options)) (*sfn.GetExecutionHistoryOutput, error)
}

// Engine implements engine.Engine for a single state machine.
type Engine struct {
	api             API
	stateMachineArn string
	logger          *slog.Logger
}

func New(api API, stateMachineArn string, logger *slog.Logger) *Engine {
	return &Engine{
		api:             api,
		stateMachineArn: stateMachineArn,
		logger:          logger,
	}
}

// Start launches one execution of the configured state machine.
func (e *Engine) Start(ctx context.Context, input engine.StartInput) (models.ExecutionHandle, error) {
	params := &sfn.StartExecutionInput{
		StateMachineArn: aws.String(e.stateMachineArn),
		Input:           aws.String(string(input.Payload)),
	}

	if input.Name != "" {
		params.Name = aws.String(input.Name)
	}

	out, err := e.api.StartExecution(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: start execution: %w", engine.ErrUnavailable, err)
	}

	if out.ExecutionArn == nil || *out.ExecutionArn == "" {
		return "", fmt.Errorf("%w: start execution returned no execution arn", engine.ErrUnavailable)
	}

	return models.ExecutionHandle(*out.ExecutionArn), nil
}

// Describe reads the execution and, while it has not succeeded, its history
// to find the steps it reached.
func (e *Engine) Describe(ctx context.Context, handle models.ExecutionHandle) (*engine.Description, error) {
	out, err := e.api.DescribeExecution(ctx, &sfn.DescribeExecutionInput{
		ExecutionArn: aws.String(handle.String()),
	})
	if err != nil {
		return nil, translate("describe execution", err)
	}

	if e.stateMachineArn != "" && aws.ToString(out.StateMachineArn) != e.stateMachineArn {
		e.logger.DebugContext(ctx, "Execution belongs to another state machine",
			"execution_arn", handle,
			"state_machine_arn", aws.ToString(out.StateMachineArn))

		return nil, fmt.Errorf("%w: execution belongs to another state machine", engine.ErrExecutionNotFound)
	}

	description := &engine.Description{
		Handle:    handle,
		Status:    mapStatus(out.Status),
		StartedAt: aws.ToTime(out.StartDate),
		StoppedAt: out.StopDate,
	}

	switch description.Status {
	case models.StatusSucceeded:
		if out.Output != nil {
			description.Output = []byte(*out.Output)
		}
	case models.StatusPending:
	default:
		current, reached, err := e.steps(ctx, handle)
		if err != nil {
			return nil, err
		}

		description.CurrentStep = current
		description.ReachedSteps = reached
	}

	return description, nil
}

func (e *Engine) steps(ctx context.Context, handle models.ExecutionHandle) (models.StepRef, []models.StepRef, error) {
	paginator := sfn.NewGetExecutionHistoryPaginator(e.api, &sfn.GetExecutionHistoryInput{
		ExecutionArn:         aws.String(handle.String()),
		MaxResults:           historyPageSize,
		IncludeExecutionData: aws.Bool(false),
	})

	var (
		current models.StepRef
		reached []models.StepRef
		seen    = make(map[string]struct{})
	)

	for page := 0; paginator.HasMorePages() && page < maxHistoryPages; page++ {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return models.StepRef{}, nil, translate("get execution history", err)
		}

		for _, event := range out.Events {
			var name string

			switch event.Type {
			case types.HistoryEventTypeTaskStateEntered:
				if event.StateEnteredEventDetails == nil {
					continue
				}

				name = aws.ToString(event.StateEnteredEventDetails.Name)
				current = models.StepNamed(name)
			case types.HistoryEventTypeTaskStateExited:
				if event.StateExitedEventDetails == nil {
					continue
				}

				name = aws.ToString(event.StateExitedEventDetails.Name)
			default:
				continue
			}

			if _, ok := seen[name]; ok || name == "" {
				continue
			}

			seen[name] = struct{}{}
			reached = append(reached, models.StepNamed(name))
		}
	}

	return current, reached, nil
}

func mapStatus(status types.ExecutionStatus) models.ExecutionStatus {
	switch status {
	case types.ExecutionStatusRunning:
		return models.StatusRunning
	case types.ExecutionStatusSucceeded:
		return models.StatusSucceeded
	case types.ExecutionStatusFailed:
		return models.StatusFailed
	case types.ExecutionStatusTimedOut:
		return models.StatusTimedOut
	case types.ExecutionStatusAborted:
		return models.StatusAborted
	default:
		// PENDING_REDRIVE and statuses added later: the run has not resumed yet.
		return models.StatusPending
	}
}

func translate(op string, err error) error {
	var (
		notFound   *types.ExecutionDoesNotExist
		invalidArn *types.InvalidArn
	)

	switch {
	case errors.As(err, &notFound):
		return fmt.Errorf("%w: %s: %w", engine.ErrExecutionNotFound, op, err)
	case errors.As(err, &invalidArn):
		return fmt.Errorf("%w: %s: %w", engine.ErrInvalidHandle, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", engine.ErrUnavailable, op, err)
	}
}
