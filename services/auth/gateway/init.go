package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/piresc/authgate/internal/pkg/circuitbreaker"
	"github.com/piresc/authgate/internal/pkg/models"
	natspkg "github.com/piresc/authgate/internal/pkg/nats"
	nsqpkg "github.com/piresc/authgate/internal/pkg/nsq"
	"github.com/piresc/authgate/services/auth"
	gateway_http "github.com/piresc/authgate/services/auth/gateway/http"
	gateway_nats "github.com/piresc/authgate/services/auth/gateway/nats"
	gateway_nsq "github.com/piresc/authgate/services/auth/gateway/nsq"
)

// JarFunc returns the backend cookie jar for a visitor
type JarFunc func(visitorID string) http.CookieJar

// TransportFactory builds a Transport bound to one visitor's cookie jar
type TransportFactory func(visitorID string) auth.Transport

// NewTransportFactory returns a factory of HTTP transports for the configured
// backend. All transports share one circuit breaker.
func NewTransportFactory(cfg models.BackendConfig, jarFor JarFunc) TransportFactory {
	var breaker *circuitbreaker.CircuitBreaker
	if cfg.BreakerThreshold > 0 {
		breakerCfg := circuitbreaker.DefaultConfig("auth-api")
		breakerCfg.FailureThreshold = uint32(cfg.BreakerThreshold)
		if cfg.BreakerTimeout > 0 {
			breakerCfg.Timeout = time.Duration(cfg.BreakerTimeout) * time.Second
		}
		breaker = circuitbreaker.New(breakerCfg, nil)
	}

	return func(visitorID string) auth.Transport {
		return gateway_http.NewAuthTransport(gateway_http.Config{
			BaseURL: cfg.BaseURL,
			Timeout: time.Duration(cfg.Timeout) * time.Second,
			Retries: cfg.Retries,
			Jar:     jarFor(visitorID),
			Breaker: breaker,
		})
	}
}

// NewEventPublisher publishes to every configured broker. With neither NATS
// nor NSQ configured, events are dropped.
func NewEventPublisher(natsClient *natspkg.Client, nsqProducer *nsqpkg.Producer) auth.EventPublisher {
	var sinks multiPublisher
	if natsClient != nil {
		sinks = append(sinks, gateway_nats.NewNATSGateway(natsClient))
	}
	if nsqProducer != nil {
		sinks = append(sinks, gateway_nsq.NewNSQGateway(nsqProducer))
	}

	switch len(sinks) {
	case 0:
		return gateway_nats.NoopPublisher{}
	case 1:
		return sinks[0]
	}
	return sinks
}

// multiPublisher sends each event to all sinks and joins their errors
type multiPublisher []auth.EventPublisher

func (m multiPublisher) PublishAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PublishAuthEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
