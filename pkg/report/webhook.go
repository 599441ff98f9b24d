package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/thepostgresguy/pgtools-sub000/internal/utils"
)

// Push posts the run summary as JSON to a webhook URL. Transient
// failures are retried with backoff; a one-shot invocation should not
// hang on a flaky endpoint, so the retry budget is small.
func Push(url string, s RunSummary, logger *logrus.Logger) error {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = &utils.LeveledLogrus{Logger: logger}

	jsonData, err := json.Marshal(s)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		logger.Debug("Webhook response body: ", string(body))
		return fmt.Errorf("failed to push run summary, code: %d", resp.StatusCode)
	}

	return nil
}
