package config

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// ListeningPortKey is the port the HTTP API listens on
	ListeningPortKey = "PORT"
	// RedisURLKey is the redis connection URL used for nonces and the event stream
	RedisURLKey = "REDIS_URL"
	// DatadirKey is the local data directory holding the badger store
	DatadirKey = "DATA_DIR_PATH"
	// EventTopicKey is the redis stream topic marketplace events are published to
	EventTopicKey = "EVENT_TOPIC"
	// LogLevelKey selects logrus verbosity. For reference https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// SigningKeyPathKey is the path of a PEM-encoded EC key used to sign session tokens.
	// When empty an ephemeral key is generated at startup.
	SigningKeyPathKey = "SIGNING_KEY_PATH"

	dbLocation = "db"
)

var vip *viper.Viper

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("AGORAFI")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 3000)
	vip.SetDefault(RedisURLKey, "redis://localhost:6379/0")
	vip.SetDefault(DatadirKey, defaultDatadir())
	vip.SetDefault(EventTopicKey, "marketplace.events")
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(SigningKeyPathKey, "")

	if err := initDatadir(); err != nil {
		log.WithError(err).Panic("error while creating datadir")
	}
}

// GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

// GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

// GetDbDir returns the badger database directory inside the datadir.
func GetDbDir() string {
	return filepath.Join(vip.GetString(DatadirKey), dbLocation)
}

func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agorafi"
	}
	return filepath.Join(home, ".agorafi")
}

func initDatadir() error {
	datadir := vip.GetString(DatadirKey)
	if err := makeDirectoryIfNotExists(datadir); err != nil {
		return err
	}
	return makeDirectoryIfNotExists(filepath.Join(datadir, dbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, os.ModeDir|0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", path, err)
		}
	}
	return nil
}
