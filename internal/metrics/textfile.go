package metrics

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes every metric gathered from g to path in the
// Prometheus text exposition format. The write is atomic.
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
