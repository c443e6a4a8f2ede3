package cmd

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/0xacademy/academy/adapters/events"
	"github.com/0xacademy/academy/adapters/probe"
	"github.com/0xacademy/academy/adapters/store"
	"github.com/0xacademy/academy/adapters/tokenizer"
	"github.com/0xacademy/academy/ports"
	devhttp "github.com/0xacademy/academy/transport/http"
)

var devFlags struct {
	domain    string
	publicURL string
}

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run a local stand-in for the 0xAcademy backend",
	Long: `Serve the auth, course, user and video routes from memory for local work.
With REDIS_URL set, nonces live in Redis and events go to Redis streams.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Tokens do not survive a restart
		privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return fmt.Errorf("generate signing key: %w", err)
		}

		wmLogger := watermill.NewStdLogger(false, false)

		var (
			nonces    ports.NonceStore
			publisher message.Publisher
		)
		if cfg.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			redisClient := redis.NewClient(opts)
			defer redisClient.Close()

			publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{Client: redisClient}, wmLogger)
			if err != nil {
				return fmt.Errorf("failed to create Redis publisher: %w", err)
			}
			nonces = store.NewRedisNonceStore(redisClient)
		} else {
			publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
			nonces = store.NewMemoryNonceStore()
		}
		defer publisher.Close()

		devCfg := devhttp.DefaultConfig()
		devCfg.Domain = devFlags.domain
		devCfg.PublicURL = devFlags.publicURL

		srv := devhttp.NewServer(devCfg, devhttp.Deps{
			Nonces:    nonces,
			Tokenizer: tokenizer.NewJWTTokenizer(privateKey),
			Events:    events.NewWatermillPublisher(publisher),
			Prober:    probe.NewMP4Prober(),
			Logger:    logger,
		})
		defer srv.Close()

		server := &http.Server{
			Addr:              cfg.DevAddr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()
		logger.Info("dev server listening", "addr", cfg.DevAddr, "redis", cfg.RedisURL != "")

		select {
		case <-cmd.Context().Done():
			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	devServerCmd.Flags().StringVar(&devFlags.domain, "domain", "", "Require this domain in SIWE messages")
	devServerCmd.Flags().StringVar(&devFlags.publicURL, "public-url", "", "Base URL for issued upload URLs")
	rootCmd.AddCommand(devServerCmd)
}
