package cron

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/job"
	"testing"
)

func TestRegisterJobs(t *testing.T) {
	m := NewCronManager(config.DefaultReputation().Cron, job.NewPointsReconcileJob(nil), job.NewContestedTrendJob(nil))
	if err := m.RegisterJobs(); err != nil {
		t.Fatalf("register: %v", err)
	}
	if n := len(m.engine.Entries()); n != 2 {
		t.Fatalf("entries = %d", n)
	}
}

func TestRegisterJobsSkipsEmptyAndRejectsInvalid(t *testing.T) {
	m := NewCronManager(config.ReputationCronCfg{Reconcile: "0 */5 * * * *"}, job.NewPointsReconcileJob(nil), job.NewContestedTrendJob(nil))
	if err := m.RegisterJobs(); err != nil {
		t.Fatalf("register: %v", err)
	}
	if n := len(m.engine.Entries()); n != 1 {
		t.Fatalf("entries = %d", n)
	}

	bad := NewCronManager(config.ReputationCronCfg{Reconcile: "every minute"}, job.NewPointsReconcileJob(nil), job.NewContestedTrendJob(nil))
	if err := bad.RegisterJobs(); err == nil {
		t.Fatal("invalid expression should fail")
	}
}
