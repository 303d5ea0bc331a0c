package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/agorafi/marketplace/adapters/events"
	"github.com/agorafi/marketplace/adapters/store"
	"github.com/agorafi/marketplace/adapters/tokenizer"
	"github.com/agorafi/marketplace/config"
	"github.com/agorafi/marketplace/service"
	"github.com/agorafi/marketplace/transport/http"
)

func main() {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	signKey, err := loadSigningKey(config.GetString(config.SigningKeyPathKey))
	if err != nil {
		log.WithError(err).Fatal("failed to load signing key")
	}

	opts, err := redis.ParseURL(config.GetString(config.RedisURLKey))
	if err != nil {
		log.WithError(err).Fatal("failed to parse redis URL")
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to create event publisher")
	}

	repo, err := store.NewBadgerManager(config.GetDbDir(), nil)
	if err != nil {
		log.WithError(err).Fatal("failed to open datastore")
	}
	defer repo.Close()

	nonces := store.NewRedisNonceStore(redisClient)
	eventPub := events.NewWatermillPublisher(publisher, config.GetString(config.EventTopicKey))

	authService := service.NewAuthService(nonces, tokenizer.NewJWTTokenizer(signKey))
	marketplace := service.NewMarketplace(repo)
	listingService := service.NewListingService(repo, marketplace, eventPub)
	offerService := service.NewOfferService(repo, marketplace, eventPub)
	spaceService := service.NewSpaceService(repo, eventPub)

	router := http.SetupRouter(authService, listingService, offerService, spaceService)

	addr := fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey))
	log.WithField("addr", addr).Info("marketplace listening")
	if err := router.Run(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// loadSigningKey reads a PEM-encoded EC private key from path, or
// generates an ephemeral one when path is empty. Ephemeral keys
// invalidate all sessions on restart, which is acceptable for dev.
func loadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	return x509.ParseECPrivateKey(block.Bytes)
}
