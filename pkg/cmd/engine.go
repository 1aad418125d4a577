package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/dukex/hl7autoct/pkg/engine"
	"github.com/dukex/hl7autoct/pkg/engine/stepfunctions"
)

var ErrMissingStateMachine = errors.New("state machine arn is required")

func NewEngine(provider string, awsCfg aws.Config, stateMachineArn string, logger *slog.Logger) (engine.Engine, error) {
	switch provider {
	case "stepfunctions":
		if stateMachineArn == "" {
			return nil, ErrMissingStateMachine
		}

		return stepfunctions.New(sfn.NewFromConfig(awsCfg), stateMachineArn, logger), nil
	default:
		return nil, fmt.Errorf("unsupported workflow engine: %q", provider)
	}
}
