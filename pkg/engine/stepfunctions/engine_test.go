package stepfunctions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/dukex/hl7autoct/pkg/engine"
	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStateMachine = "arn:aws:states:us-east-1:123456789012:stateMachine:hl7-pipeline"
	testExecution    = "arn:aws:states:us-east-1:123456789012:execution:hl7-pipeline:run-1"
)

type fakeAPI struct {
	startInput  *sfn.StartExecutionInput
	startOutput *sfn.StartExecutionOutput
	startErr    error

	describeOutput *sfn.DescribeExecutionOutput
	describeErr    error

	historyPages [][]types.HistoryEvent
	historyErr   error
	historyCalls int
}

func (f *fakeAPI) StartExecution(_ context.Context, params *sfn.StartExecutionInput, _ ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error) {
	f.startInput = params
	return f.startOutput, f.startErr
}

func (f *fakeAPI) DescribeExecution(_ context.Context, _ *sfn.DescribeExecutionInput, _ ...func(*sfn.Options)) (*sfn.DescribeExecutionOutput, error) {
	return f.describeOutput, f.describeErr
}

func (f *fakeAPI) GetExecutionHistory(_ context.Context, params *sfn.GetExecutionHistoryInput, _ ...func(*sfn.Options)) (*sfn.GetExecutionHistoryOutput, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}

	page := f.historyCalls
	f.historyCalls++

	out := &sfn.GetExecutionHistoryOutput{}
	if page < len(f.historyPages) {
		out.Events = f.historyPages[page]
	}

	if page+1 < len(f.historyPages) {
		out.NextToken = aws.String("next")
	}

	return out, nil
}

func newTestEngine(api API) *Engine {
	return New(api, testStateMachine, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func entered(name string) types.HistoryEvent {
	return types.HistoryEvent{
		Type:                     types.HistoryEventTypeTaskStateEntered,
		StateEnteredEventDetails: &types.StateEnteredEventDetails{Name: aws.String(name)},
	}
}

func exited(name string) types.HistoryEvent {
	return types.HistoryEvent{
		Type:                    types.HistoryEventTypeTaskStateExited,
		StateExitedEventDetails: &types.StateExitedEventDetails{Name: aws.String(name)},
	}
}

func TestStart(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{startOutput: &sfn.StartExecutionOutput{ExecutionArn: aws.String(testExecution)}}
	e := newTestEngine(api)

	handle, err := e.Start(context.Background(), engine.StartInput{
		Name:    "req-1",
		Payload: []byte(`{"hl7_message":"MSH|^~\\&|"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionHandle(testExecution), handle)
	assert.Equal(t, testStateMachine, aws.ToString(api.startInput.StateMachineArn))
	assert.Equal(t, "req-1", aws.ToString(api.startInput.Name))
	assert.JSONEq(t, `{"hl7_message":"MSH|^~\\&|"}`, aws.ToString(api.startInput.Input))
}

func TestStart_Errors(t *testing.T) {
	t.Parallel()

	t.Run("client error", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(&fakeAPI{startErr: errors.New("throttled")})

		_, err := e.Start(context.Background(), engine.StartInput{Payload: []byte(`{}`)})
		assert.ErrorIs(t, err, engine.ErrUnavailable)
	})

	t.Run("missing arn", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(&fakeAPI{startOutput: &sfn.StartExecutionOutput{}})

		_, err := e.Start(context.Background(), engine.StartInput{Payload: []byte(`{}`)})
		assert.ErrorIs(t, err, engine.ErrUnavailable)
	})
}

func TestDescribe_Succeeded(t *testing.T) {
	t.Parallel()

	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	api := &fakeAPI{describeOutput: &sfn.DescribeExecutionOutput{
		ExecutionArn:    aws.String(testExecution),
		StateMachineArn: aws.String(testStateMachine),
		Status:          types.ExecutionStatusSucceeded,
		StartDate:       aws.Time(started),
		Output:          aws.String(`{"final_status":{}}`),
	}}

	d, err := newTestEngine(api).Describe(context.Background(), testExecution)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSucceeded, d.Status)
	assert.JSONEq(t, `{"final_status":{}}`, string(d.Output))
	assert.Equal(t, started, d.StartedAt)
	assert.Zero(t, api.historyCalls, "history is not read once the run succeeded")
}

func TestDescribe_RunningReadsHistory(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		describeOutput: &sfn.DescribeExecutionOutput{
			StateMachineArn: aws.String(testStateMachine),
			Status:          types.ExecutionStatusRunning,
			Output:          aws.String(`{"ignored":true}`),
		},
		historyPages: [][]types.HistoryEvent{
			{entered("ParseHL7Messages"), exited("ParseHL7Messages"), entered("AnalyzeSegments")},
			{{Type: types.HistoryEventTypeLambdaFunctionScheduled}, exited("AnalyzeSegments"), entered("EvaluateRules")},
		},
	}

	d, err := newTestEngine(api).Describe(context.Background(), testExecution)
	require.NoError(t, err)

	assert.Equal(t, models.StatusRunning, d.Status)
	assert.Nil(t, d.Output)
	assert.Equal(t, models.StepNamed("EvaluateRules"), d.CurrentStep)
	assert.Equal(t, []models.StepRef{
		models.StepNamed("ParseHL7Messages"),
		models.StepNamed("AnalyzeSegments"),
		models.StepNamed("EvaluateRules"),
	}, d.ReachedSteps)
	assert.Equal(t, 2, api.historyCalls)
}

func TestDescribe_PendingSkipsHistory(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{describeOutput: &sfn.DescribeExecutionOutput{
		StateMachineArn: aws.String(testStateMachine),
		Status:          types.ExecutionStatusPendingRedrive,
	}}

	d, err := newTestEngine(api).Describe(context.Background(), testExecution)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, d.Status)
	assert.Zero(t, api.historyCalls)
}

func TestDescribe_ForeignStateMachine(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{describeOutput: &sfn.DescribeExecutionOutput{
		StateMachineArn: aws.String("arn:aws:states:us-east-1:123456789012:stateMachine:other"),
		Status:          types.ExecutionStatusSucceeded,
	}}

	_, err := newTestEngine(api).Describe(context.Background(), testExecution)
	assert.ErrorIs(t, err, engine.ErrExecutionNotFound)
}

func TestDescribe_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		api     *fakeAPI
		wantErr error
	}{
		{
			name:    "does not exist",
			api:     &fakeAPI{describeErr: &types.ExecutionDoesNotExist{Message: aws.String("nope")}},
			wantErr: engine.ErrExecutionNotFound,
		},
		{
			name:    "invalid arn",
			api:     &fakeAPI{describeErr: &types.InvalidArn{Message: aws.String("bad")}},
			wantErr: engine.ErrInvalidHandle,
		},
		{
			name:    "transport",
			api:     &fakeAPI{describeErr: context.DeadlineExceeded},
			wantErr: engine.ErrUnavailable,
		},
		{
			name: "history failure",
			api: &fakeAPI{
				describeOutput: &sfn.DescribeExecutionOutput{
					StateMachineArn: aws.String(testStateMachine),
					Status:          types.ExecutionStatusFailed,
				},
				historyErr: errors.New("connection reset"),
			},
			wantErr: engine.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newTestEngine(tt.api).Describe(context.Background(), testExecution)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMapStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.StatusRunning, mapStatus(types.ExecutionStatusRunning))
	assert.Equal(t, models.StatusSucceeded, mapStatus(types.ExecutionStatusSucceeded))
	assert.Equal(t, models.StatusFailed, mapStatus(types.ExecutionStatusFailed))
	assert.Equal(t, models.StatusTimedOut, mapStatus(types.ExecutionStatusTimedOut))
	assert.Equal(t, models.StatusAborted, mapStatus(types.ExecutionStatusAborted))
	assert.Equal(t, models.StatusPending, mapStatus(types.ExecutionStatus("SOMETHING_NEW")))
}
