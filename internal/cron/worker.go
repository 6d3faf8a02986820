package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hfarrukh/solaradvisor/internal/alerting"
	"github.com/hfarrukh/solaradvisor/internal/config"
	"github.com/hfarrukh/solaradvisor/internal/metrics"
	"github.com/hfarrukh/solaradvisor/internal/storage"
	"github.com/hfarrukh/solaradvisor/internal/tariff"
)

const (
	jobName                  = "refresh_tariffs"
	lockKey            int64 = 7411
	intervalSettingKey       = "refresh_interval_seconds"
)

// Run starts the tariff refresh worker. The interval comes from
// SOLARADVISOR_CRON_INTERVAL_SECONDS or the refresh_interval_seconds
// setting and may be integer seconds or a standard cron expression.
// With the postgrespool driver an advisory lock keeps multi-instance
// deployments from refreshing twice.
func Run(ctx context.Context, cfg config.Config) error {
	st, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN, cfg.AutoMigrate)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	alerter := alerting.NewAlerter(alerting.DefaultAlertConfig())

	intervalSetting := "3600"
	if raw := os.Getenv("SOLARADVISOR_CRON_INTERVAL_SECONDS"); raw != "" {
		intervalSetting = raw
	}
	if val, err := st.GetSetting(ctx, intervalSettingKey); err == nil && val != "" {
		intervalSetting = val
	}

	// Control loop ticker, checks config and run time.
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	getNextRun := func(setting string, lastRun time.Time) time.Time {
		if v, err := strconv.Atoi(setting); err == nil && v > 0 {
			return lastRun.Add(time.Duration(v) * time.Second)
		}
		if sched, err := cron.ParseStandard(setting); err == nil {
			return sched.Next(lastRun)
		}
		return lastRun.Add(time.Hour)
	}

	nextRun := time.Now()

	log.Printf("cron worker starting, initial setting=%q driver=%s", intervalSetting, cfg.DBDriver)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			reportPoolStats(st)

			if val, err := st.GetSetting(ctx, intervalSettingKey); err == nil && val != "" && val != intervalSetting {
				log.Printf("cron: interval updated from %q to %q", intervalSetting, val)
				intervalSetting = val
				nextRun = getNextRun(intervalSetting, time.Now())
			}

			if time.Now().Before(nextRun) {
				continue
			}

			started := time.Now()

			ok, err := st.AcquireAdvisoryLock(ctx, lockKey)
			if err != nil {
				log.Printf("cron: acquire advisory lock failed: %v", err)
				metrics.UpdateJobMetrics(jobName, started, err)
				nextRun = getNextRun(intervalSetting, time.Now())
				continue
			}
			if !ok {
				log.Printf("cron: advisory lock held by another worker, skipping run")
				nextRun = getNextRun(intervalSetting, time.Now())
				continue
			}

			alert := runRefresh(ctx, st, cfg, started)

			if _, err := st.ReleaseAdvisoryLock(ctx, lockKey); err != nil {
				log.Printf("cron: release advisory lock failed: %v", err)
			}

			var runErr error
			if alert.FailedCount > 0 {
				runErr = fmt.Errorf("%d of %d tariff sources failed", alert.FailedCount, alert.TotalCount)
			}

			metrics.UpdateJobMetrics(jobName, started, runErr)
			dur := time.Since(started)
			errMsg := ""
			if runErr != nil {
				errMsg = runErr.Error()
			}
			if err := st.UpdateScheduledJob(ctx, jobName, started, dur, runErr == nil, errMsg); err != nil {
				log.Printf("cron: update scheduled_jobs failed: %v", err)
			}
			if err := alerter.SendRefreshAlert(ctx, alert); err != nil {
				log.Printf("cron: send alert failed: %v", err)
			}

			if runErr != nil {
				log.Printf("cron: job %s completed with error: %v (duration=%s)", jobName, runErr, dur)
			} else {
				log.Printf("cron: job %s completed successfully (duration=%s)", jobName, dur)
			}

			nextRun = getNextRun(intervalSetting, time.Now())
		}
	}
}

// reportPoolStats publishes connection pool gauges when the backend
// exposes them.
func reportPoolStats(st storage.Storage) {
	pool, ok := st.(*storage.PostgresPoolStorage)
	if !ok {
		return
	}
	stat := pool.PoolStat()
	metrics.UpdateDBPoolMetrics("postgrespool",
		float64(stat.TotalConns()), float64(stat.IdleConns()), float64(stat.AcquiredConns()),
		stat.NewConnsCount())
}

// runRefresh downloads and parses every registered tariff source, then
// prunes analyses past the retention window.
func runRefresh(ctx context.Context, st storage.Storage, cfg config.Config, started time.Time) alerting.RefreshAlert {
	sources := tariff.Sources()
	alert := alerting.RefreshAlert{
		JobName:    jobName,
		TotalCount: len(sources),
		Timestamp:  started,
	}

	for _, src := range sources {
		if err := refreshSource(ctx, st, src); err != nil {
			log.Printf("cron: refresh source %s failed: %v", src.Key, err)
			alert.FailedCount++
			alert.FailedDetails = append(alert.FailedDetails, alerting.SourceFailure{
				Source: src.Key,
				Error:  err.Error(),
			})
			continue
		}
		alert.SuccessCount++
	}

	if cfg.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
		if n, err := st.PruneAnalyses(ctx, cutoff); err != nil {
			log.Printf("cron: prune analyses failed: %v", err)
		} else if n > 0 {
			log.Printf("cron: pruned %d analyses older than %s", n, cutoff.Format("2006-01-02"))
		}
	}

	alert.Duration = time.Since(started)
	return alert
}

func refreshSource(ctx context.Context, st storage.Storage, src tariff.SourceDescriptor) error {
	pdfURL, err := tariff.RefreshSourcePDF(src, src.DefaultPDFPath)
	if err != nil {
		return fmt.Errorf("fetch pdf: %w", err)
	}

	sched, err := tariff.ParseSourcePDF(src.Key, src.DefaultPDFPath)
	if err != nil {
		return fmt.Errorf("parse pdf: %w", err)
	}
	sched.SourceURL = pdfURL

	payload, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	return st.SaveTariffSnapshot(ctx, storage.TariffSnapshot{
		Source:    src.Key,
		Payload:   payload,
		FetchedAt: time.Now(),
	})
}
