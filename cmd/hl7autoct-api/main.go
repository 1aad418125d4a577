package main

import (
	"context"
	"os"
	"time"

	"github.com/dukex/hl7autoct/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	cmd := &cli.Command{
		Name:                  "hl7autoct-api",
		Usage:                 "Launch HL7 transformation pipelines and report on their progress",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:     "public-base-url",
				Usage:    "Public URL of this API, used to build the URLs returned to callers",
				Required: true,
				Sources:  cli.EnvVars("PUBLIC_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "engine",
				Usage:   "Workflow engine (stepfunctions)",
				Value:   "stepfunctions",
				Sources: cli.EnvVars("WORKFLOW_ENGINE"),
			},
			&cli.StringFlag{
				Name:    "state-machine-arn",
				Usage:   "ARN of the pipeline state machine",
				Sources: cli.EnvVars("STATE_MACHINE_ARN"),
			},
			&cli.StringFlag{
				Name:    "aws-region",
				Usage:   "AWS region, defaults to the SDK configuration chain",
				Sources: cli.EnvVars("AWS_REGION"),
			},
			&cli.StringFlag{
				Name:    "artifact-store",
				Usage:   "Artifact store (s3, static)",
				Value:   "s3",
				Sources: cli.EnvVars("ARTIFACT_STORE"),
			},
			&cli.StringFlag{
				Name:    "artifact-base-url",
				Usage:   "Base URL artifacts are served from, for the static store",
				Sources: cli.EnvVars("ARTIFACT_BASE_URL"),
			},
			&cli.DurationFlag{
				Name:    "url-expiry",
				Usage:   "Lifetime of minted artifact URLs",
				Value:   time.Hour,
				Sources: cli.EnvVars("URL_EXPIRY"),
			},
			&cli.DurationFlag{
				Name:    "signing-window",
				Usage:   "Artifact URLs minted within one window are identical; must be shorter than url-expiry",
				Value:   30 * time.Minute,
				Sources: cli.EnvVars("SIGNING_WINDOW"),
			},
			&cli.DurationFlag{
				Name:    "upstream-timeout",
				Usage:   "Timeout of each call to the engine, object store or ledger",
				Value:   2 * time.Second,
				Sources: cli.EnvVars("UPSTREAM_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "step-catalog",
				Usage:   "Path to a YAML step catalog, defaults to the built-in pipeline steps",
				Sources: cli.EnvVars("STEP_CATALOG"),
			},
			&cli.StringFlag{
				Name:    "ledger-url",
				Usage:   "Launch ledger (memory://, file://<dir>, redis://..., postgres://...)",
				Value:   "memory://",
				Sources: cli.EnvVars("LEDGER_URL"),
			},
			&cli.DurationFlag{
				Name:    "grace-window",
				Usage:   "How long a launched execution unknown to the engine is reported as PENDING",
				Value:   30 * time.Second,
				Sources: cli.EnvVars("GRACE_WINDOW"),
			},
			&cli.DurationFlag{
				Name:    "ledger-retention",
				Usage:   "How long launch records are kept",
				Value:   24 * time.Hour,
				Sources: cli.EnvVars("LEDGER_RETENTION"),
			},
			&cli.StringFlag{
				Name:    "ledger-prune-schedule",
				Usage:   "Cron schedule pruning expired launch records (memory, file and postgres ledgers)",
				Value:   "*/15 * * * *",
				Sources: cli.EnvVars("LEDGER_PRUNE_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel, none)",
				Value:   "none",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing hl7autoct API")

			return run(ctx, logger, settingsFromCommand(command))
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func settingsFromCommand(command *cli.Command) settings {
	return settings{
		Port:                command.Int("port"),
		PublicBaseURL:       command.String("public-base-url"),
		Engine:              command.String("engine"),
		StateMachineArn:     command.String("state-machine-arn"),
		AWSRegion:           command.String("aws-region"),
		ArtifactStore:       command.String("artifact-store"),
		ArtifactBaseURL:     command.String("artifact-base-url"),
		URLExpiry:           command.Duration("url-expiry"),
		SigningWindow:       command.Duration("signing-window"),
		UpstreamTimeout:     command.Duration("upstream-timeout"),
		StepCatalog:         command.String("step-catalog"),
		LedgerURL:           command.String("ledger-url"),
		GraceWindow:         command.Duration("grace-window"),
		LedgerRetention:     command.Duration("ledger-retention"),
		LedgerPruneSchedule: command.String("ledger-prune-schedule"),
		EventBus:            command.String("event-bus"),
		KafkaBrokers:        command.String("kafka-brokers"),
		Tracing:             command.Bool("tracing"),
	}
}
