package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const pushJob = "datalake"

// Push sends the default registry to a Prometheus Pushgateway, grouped by workflow.
// Runs are short-lived, so nothing is left behind for a scraper to collect.
func Push(ctx context.Context, url, workflow string) error {
	err := push.New(url, pushJob).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("workflow", workflow).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("metrics: push: %w", err)
	}
	return nil
}
