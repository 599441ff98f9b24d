package report

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/thepostgresguy/pgtools-sub000/pkg/internal/utils"
)

const (
	DEFAULT_CONFIG_KEY = "report"
)

type Config struct {
	// Out is a JSONL file the run summary is appended to
	Out string `mapstructure:"out"`
	// PlanFile is a YAML file the evaluated plan is written to
	PlanFile string `mapstructure:"plan_file"`
	// WebhookURL receives the run summary as a JSON POST
	WebhookURL string `mapstructure:"webhook_url" validate:"omitempty,url"`
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

	pgtoolsConfig.BindEnv("out", "PGT_REPORT_OUT")
	pgtoolsConfig.BindEnv("plan_file", "PGT_REPORT_PLAN_FILE")
	pgtoolsConfig.BindEnv("webhook_url", "PGT_REPORT_WEBHOOK_URL")

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
