// ABOUTME: NATS client wrapper for report intake subscriptions
// ABOUTME: Handles connection, queue-group subscription, and graceful shutdown

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sinugotshifhiwa4/errsift/internal/observability"
)

// NATSConfig holds NATS connection configuration.
type NATSConfig struct {
	// NATS server URL.
	URL string

	// Subject to subscribe to for error reports.
	Subject string

	// Queue group name for load balancing.
	QueueGroup string

	// Connection name for identification.
	Name string

	// Reconnect settings.
	MaxReconnects int
	ReconnectWait time.Duration

	// Request timeout.
	Timeout time.Duration
}

// DefaultNATSConfig returns a configuration with sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		Subject:       "errsift.reports",
		QueueGroup:    "errsift-workers",
		Name:          "errsift",
		MaxReconnects: -1, // Unlimited.
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Client wraps the NATS connection and subscription.
type Client struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	handler *Handler
	config  NATSConfig
	logger  *slog.Logger
	ctxLog  *observability.ContextLogger
}

// NewClient creates a new NATS client with the given configuration.
func NewClient(cfg NATSConfig, handler *Handler, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		handler: handler,
		config:  cfg,
		logger:  logger,
		ctxLog:  observability.NewContextLogger(logger),
	}, nil
}

// Connect establishes the NATS connection.
func (c *Client) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name(c.config.Name),
		nats.MaxReconnects(c.config.MaxReconnects),
		nats.ReconnectWait(c.config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			c.logger.Warn("NATS disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			c.logger.Info("NATS connection closed")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			c.logger.Error("NATS error",
				slog.Any("error", err),
				slog.String("subject", sub.Subject),
			)
		}),
	}

	conn, err := nats.Connect(c.config.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	c.conn = conn
	c.logger.Info("connected to NATS",
		slog.String("url", conn.ConnectedUrl()),
		slog.String("server_id", conn.ConnectedServerId()),
	)

	return nil
}

// Subscribe starts listening for error reports.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil {
		return fmt.Errorf("not connected to NATS")
	}

	sub, err := c.conn.QueueSubscribe(c.config.Subject, c.config.QueueGroup, func(msg *nats.Msg) {
		c.handleMessage(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	c.sub = sub
	c.logger.Info("subscribed to NATS",
		slog.String("subject", c.config.Subject),
		slog.String("queue", c.config.QueueGroup),
	)

	return nil
}

// handleMessage processes an incoming NATS message.
func (c *Client) handleMessage(ctx context.Context, msg *nats.Msg) {
	// Start a span for tracing.
	ctx, span := observability.StartSpan(ctx, "nats.handle_message")
	defer span.End()

	// Every report gets a correlation ID for cross-log tracing.
	ctx, _ = observability.EnsureCorrelationID(ctx)

	start := time.Now()

	// Parse request.
	var req ReportRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		c.ctxLog.Error(ctx, "failed to parse report request",
			slog.Any("error", err),
			slog.Int("bytes", len(msg.Data)),
		)
		c.replyError(msg, "", "invalid request format: "+err.Error())
		return
	}

	// Process request.
	resp := c.handler.ProcessRequest(ctx, req)
	observability.AnnotateReportSpan(ctx, req.Source, resp.Category, resp.Status)

	// Send reply if requested.
	if msg.Reply != "" {
		respData, err := json.Marshal(resp)
		if err != nil {
			c.ctxLog.Error(ctx, "failed to marshal response",
				slog.Any("error", err),
				slog.String("request_id", req.RequestID),
			)
			return
		}

		if err := msg.Respond(respData); err != nil {
			c.ctxLog.Error(ctx, "failed to send reply",
				slog.Any("error", err),
				slog.String("request_id", req.RequestID),
			)
			return
		}
	}

	// Log the request.
	elapsed := time.Since(start)
	c.ctxLog.Info(ctx, "processed error report",
		slog.String("request_id", req.RequestID),
		slog.String("source", req.Source),
		slog.String("status", resp.Status),
		slog.String("category", resp.Category),
		slog.Duration("duration", elapsed),
	)
}

// replyError sends an error response.
func (c *Client) replyError(msg *nats.Msg, requestID, errMsg string) {
	if msg.Reply == "" {
		return
	}

	resp := ReportResponse{
		RequestID:   requestID,
		Status:      StatusError,
		Error:       errMsg,
		ProcessedAt: time.Now().UTC(),
	}

	respData, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("failed to marshal error response", slog.Any("error", err))
		return
	}

	if err := msg.Respond(respData); err != nil {
		c.logger.Error("failed to send error reply", slog.Any("error", err))
	}
}

// Close closes the NATS connection.
func (c *Client) Close() error {
	if c.sub != nil {
		if err := c.sub.Unsubscribe(); err != nil {
			c.logger.Warn("failed to unsubscribe", slog.Any("error", err))
		}
	}

	if c.conn != nil {
		c.conn.Close()
	}

	return nil
}

// IsConnected returns true if connected to NATS.
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}
