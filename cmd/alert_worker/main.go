package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/seronsenapati/STAYLO/config"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
	"github.com/seronsenapati/STAYLO/pkg/mailer"
)

// alert_worker consumes the events queue and mails degraded events
// (orphaned reviews, geocode fallbacks) to the operator address.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-alerts", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.AlertEmail == "" {
		logger.Info("ALERT_EMAIL not set; alert worker disabled")
		return
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch between workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEventsQueue); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var evt gateway.Event
			if err := json.Unmarshal(msg.Body, &evt); err != nil {
				logger.WithError(err).Warn("bad event message")
				_ = msg.Nack(false, false)
				continue
			}
			if !evt.Degraded() {
				_ = msg.Ack(false)
				continue
			}

			alert, err := mailer.RenderAlert(cfg.AppName, evt)
			if err != nil {
				logger.WithError(err).WithField("type", evt.Type).Error("render alert failed")
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			if err := mg.Send(c, cfg.AlertEmail, alert.Subject, alert.Text, alert.HTML); err != nil {
				cancel()
				logger.WithError(err).WithField("type", evt.Type).Warn("send alert failed, requeueing")
				_ = msg.Nack(false, true)
				continue
			}
			cancel()
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("alert worker listening on queue=%s", cfg.RabbitMQEventsQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
