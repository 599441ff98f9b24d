package pg

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/thepostgresguy/pgtools-sub000/pkg/internal/utils"
)

const (
	DEFAULT_CONFIG_KEY = "postgresql"
)

type Config struct {
	ConnectionURL string `mapstructure:"connection_url" validate:"required"`
	// LockTimeout is applied on each maintenance session before the
	// statement runs. Zero leaves the server default untouched.
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

func ConfigFromViper(key *string) (Config, error) {
	var keyValue string
	if key == nil {
		keyValue = DEFAULT_CONFIG_KEY
	} else {
		keyValue = *key
	}

	pgtoolsConfig := viper.Sub(keyValue)
	if pgtoolsConfig == nil {
		pgtoolsConfig = viper.New()
	}

	pgtoolsConfig.BindEnv("connection_url", "PGT_POSTGRESQL_CONNECTION_URL")
	pgtoolsConfig.BindEnv("lock_timeout", "PGT_POSTGRESQL_LOCK_TIMEOUT")

	var pgConfig Config
	err := pgtoolsConfig.Unmarshal(&pgConfig)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %v", err)
	}

	err = utils.ValidateStruct(&pgConfig)
	if err != nil {
		return Config{}, err
	}
	return pgConfig, nil
}
