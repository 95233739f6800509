package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/config"
	"github.com/mcdev12/courtside/go/internal/gateway"
	"github.com/mcdev12/courtside/go/internal/match"
	"github.com/mcdev12/courtside/go/internal/matchfeed"
	"github.com/mcdev12/courtside/go/internal/nickname"
)

type Services struct {
	Connections *gateway.ConnectionManager
	Session     *match.Service
	WebSocket   *gateway.WebSocketHandler

	feed      *matchfeed.Worker
	publisher *matchfeed.JetStreamPublisher
}

func setupServices(ctx context.Context, cfg config.Config) (*Services, error) {
	// Connections → session → router → HTTP handler.
	connCfg := gateway.DefaultConnectionConfig()
	connCfg.SendBufferSize = cfg.WSSendBuffer
	connCfg.MaxMessageSize = cfg.WSMaxMessageBytes
	connCfg.CheckOrigin = gateway.AllowOrigins(cfg.AllowedOrigins)
	connections := gateway.NewConnectionManager(connCfg)

	s := &Services{Connections: connections}

	var opts []match.Option
	if cfg.NATS.Enabled() {
		jsCfg := matchfeed.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		jsCfg.StreamName = cfg.NATS.Stream
		jsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix

		publisher, err := matchfeed.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create match feed publisher: %w", err)
		}
		s.publisher = publisher
		s.feed = matchfeed.NewWorker(publisher, matchfeed.DefaultConfig())
		opts = append(opts, match.WithFeed(s.feed))
	}

	s.Session = match.NewService(match.DefaultConfig(), clockwork.NewRealClock(), connections, opts...)

	names, err := nickname.Default()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to load nickname list: %w", err)
	}
	router := gateway.NewRouter(s.Session, names)
	var handlerOpts []gateway.HandlerOption
	if s.feed != nil {
		handlerOpts = append(handlerOpts, gateway.WithFeedStats(s.feed))
	}
	s.WebSocket = gateway.NewWebSocketHandler(connections, router, s.Session, handlerOpts...)

	return s, nil
}

// Start launches the background goroutines. Each one stops when ctx is
// cancelled and marks wg done.
func (s *Services) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Connections.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := s.Session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("session loop failed")
		}
	}()

	if s.feed != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("match feed worker failed")
			}
		}()
	}
}

func (s *Services) Close() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close match feed publisher")
		}
	}
}
