package stats

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/thepostgresguy/pgtools-sub000/pkg/internal/utils"
)

const (
	DEFAULT_CONFIG_KEY = "collector"
)

type Config struct {
	// AllowPartial keeps a run going when individual statistics rows
	// cannot be read. When false any unreadable row aborts the run
	// before execution starts.
	AllowPartial bool `mapstructure:"allow_partial"`
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

	pgtoolsConfig.BindEnv("allow_partial", "PGT_COLLECTOR_ALLOW_PARTIAL")
	pgtoolsConfig.SetDefault("allow_partial", false)

	var config Config
	err := pgtoolsConfig.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %v", err)
	}

	err = utils.ValidateStruct(&config)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
