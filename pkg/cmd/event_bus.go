package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/hl7autoct/pkg/channels/gochannel"
	"github.com/dukex/hl7autoct/pkg/channels/kafka"
	"github.com/dukex/hl7autoct/pkg/eventbus"
)

func NewEventBus(provider, kafkaBrokers string, logger *slog.Logger) (eventbus.EventBus, error) {
	switch provider {
	case "kafka":
		pub, err := kafka.CreatePublisher(watermill.NewSlogLogger(logger), kafka.ParseBrokers(kafkaBrokers))
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub), nil
	case "gochannel":
		return eventbus.NewWatermillEventBus(gochannel.CreateChannel(watermill.NewSlogLogger(logger))), nil
	case "none", "":
		return eventbus.NoopEventBus{}, nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %q", provider)
	}
}
