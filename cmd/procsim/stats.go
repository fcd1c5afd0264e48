package main

import (
	"strconv"
	"time"

	"github.com/danmuck/procsim/src/metrics"
	logs "github.com/danmuck/smplog"
)

func printStats(m *metrics.Metrics) error {
	samples, err := m.Summary()
	if err != nil {
		return err
	}

	logs.Titlef("\nRun Stats\n")
	logs.DataKV("Generated at", time.Now().Format(time.RFC3339))
	for _, s := range samples {
		logs.DataKV(s.Key(), strconv.FormatFloat(s.Value, 'f', -1, 64))
	}
	return nil
}
