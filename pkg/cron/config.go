package cron

import (
	"github.com/spf13/viper"
	"github.com/thepostgresguy/pgtools-sub000/pkg/internal/utils"
)

const (
	DEFAULT_CONFIG_KEY = "cron"
)

// Entry is one declared schedule line. Command is the pgtools
// subcommand with its flags, without the binary path; the path of the
// running binary is prepended at apply time.
type Entry struct {
	Schedule string `mapstructure:"schedule" validate:"required,cron"`
	Command  string `mapstructure:"command" validate:"required"`
}

// Config declares the full set of schedule entries pgtools owns. The
// installed crontab block is synced to exactly this set, so removing an
// entry here removes it from the crontab on the next apply.
type Config struct {
	Entries []Entry `mapstructure:"entries" validate:"dive"`
}

// Entries come from the config file only, there is no sane env
// encoding for a list of schedule lines.
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

	var config Config
	err := pgtoolsConfig.Unmarshal(&config)
	if err != nil {
		return Config{}, err
	}

	err = utils.ValidateStruct(&config)
	if err != nil {
		return Config{}, err
	}

	return config, nil
}
