package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/models"
	"catalog/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var bindingKey string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Log product events published by the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(opts)
			if err != nil {
				return err
			}
			if cfg.RabbitMQURL == "" {
				return errors.New("RABBITMQ_URL must be set to watch events")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			return client.Consume(ctx, bindingKey, eventLogger(logger))
		},
	}

	cmd.Flags().StringVar(&bindingKey, "binding-key", "product.#", "Routing key pattern to subscribe to")
	return cmd
}

// eventLogger decodes a product event and writes it to the log.
func eventLogger(logger *logrus.Logger) func(amqp.Delivery) error {
	log := logger.WithField("component", "watch")
	return func(msg amqp.Delivery) error {
		var event models.ProductEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("failed to decode event %q: %w", msg.RoutingKey, err)
		}

		fields := logrus.Fields{
			"type":        event.Type,
			"product_id":  event.ProductID,
			"occurred_at": event.OccurredAt,
		}
		if event.Product != nil {
			fields["name"] = event.Product.Name
			fields["category"] = event.Product.Category
			fields["price"] = event.Product.Price.StringFixed(models.PriceScale)
		}
		log.WithFields(fields).Info("Product event")
		return nil
	}
}
