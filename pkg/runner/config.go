package runner

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/thepostgresguy/pgtools-sub000/pkg/internal/utils"
)

const (
	DEFAULT_CONFIG_KEY = "runner"

	JOBS_DEFAULT = 1
)

type Config struct {
	// Jobs caps how many operations run at once
	Jobs int `mapstructure:"jobs" validate:"gte=1"`
	// DryRun reports what would run without touching the server
	DryRun bool `mapstructure:"dry_run"`
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

	pgtoolsConfig.BindEnv("jobs", "PGT_RUNNER_JOBS")
	pgtoolsConfig.BindEnv("dry_run", "PGT_RUNNER_DRY_RUN")

	pgtoolsConfig.SetDefault("jobs", JOBS_DEFAULT)
	pgtoolsConfig.SetDefault("dry_run", false)

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
