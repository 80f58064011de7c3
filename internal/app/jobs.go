package app

import (
	"context"
	"time"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	spec := a.appConfig.Jobs.AlertSweepCron
	if spec == "" {
		spec = "@every 30m"
	}
	_, err = a.sched.AddFunc(spec, a.SchedAlertSweepTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", a.SchedClearExpireData)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedAlertSweepTask notifies price alert subscribers
func (a *Application) SchedAlertSweepTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := a.RunAlertSweep(ctx)
	if err != nil {
		zap.L().Error("price alert sweep failed", zap.String("namespace", "jobs"), zap.Error(err))
		return
	}
	zap.L().Info("price alert sweep done",
		zap.String("namespace", "jobs"),
		zap.Int("checked", report.Checked),
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed),
		zap.Int("rebased", report.Rebased))
}

// SchedClearExpireData removes member activity older than the retention window
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	days := a.appConfig.Jobs.ActivityRetention
	if days <= 0 {
		days = 180
	}
	a.gormDB.
		Where("created_at < ?", time.Now().
			Add(-time.Hour*24*time.Duration(days))).Delete(&domain.UserActivity{})
}
