// File: internal/session/refresh.go
package session

import (
	"context"
	"fmt"
	"time"

	"scholarhub_client/internal/common"
	"scholarhub_client/internal/config"
	"scholarhub_client/internal/identity"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RefreshJob periodically exchanges the refresh token so outbound requests
// always carry a live credential. Each successful refresh is delivered as a
// session-change notification by the provider.
type RefreshJob struct {
	provider      identity.Provider
	store         *Store
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewRefreshJob creates a new RefreshJob.
func NewRefreshJob(
	provider identity.Provider,
	store *Store,
	logger *zap.Logger,
	cfg *config.Config,
) *RefreshJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &RefreshJob{
		provider:      provider,
		store:         store,
		logger:        logger.Named("RefreshJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *RefreshJob) SetupAndStart() error {
	jobSpec := j.cfg.TokenRefreshSchedule
	if jobSpec == "" {
		j.logger.Warn("Token refresh schedule not defined (TOKEN_REFRESH_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule token refresh job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Token refresh job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob refreshes the credential for the currently signed-in identity.
func (j *RefreshJob) runJob() {
	if j.store.Current().Identity == nil {
		j.logger.Debug("No active session, skipping credential refresh")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := j.provider.Refresh(ctx); err != nil {
		if common.AuthKind(err) == common.AuthErrInvalidCredentials {
			// Session expired externally; the provider already signed out.
			j.logger.Warn("Session expired; refresh token rejected", zap.Error(err))
			return
		}
		j.logger.Error("Credential refresh failed", zap.Error(err))
		return
	}
	j.logger.Debug("Credential refresh completed")
}

// Stop gracefully stops the cron scheduler.
func (j *RefreshJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping token refresh scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Token refresh scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Token refresh scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
