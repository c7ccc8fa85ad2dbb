package cron

import (
	"context"
	"os"
	"sync"
	"time"

	cronv3 "github.com/robfig/cron/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/utils"
)

const (
	// GroupExpiry serializes the sweeps that expire verifications and invitations
	GroupExpiry = "expiry"

	// LeaseDuration is how long a lease lasts before needing renewal
	LeaseDuration = 15 * time.Second
	// RenewDeadline is how long a leader has to renew its lease
	RenewDeadline = 10 * time.Second
	// RetryPeriod is how long to wait between leadership attempts
	RetryPeriod = 2 * time.Second

	leaseName = "adminstack-cron-leader"
	appSource = "adminstack-cron"
)

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupExpiry: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg      *config.Config
	log      logger.Logger
	cron     *cronv3.Cron
	k8s      kubernetes.Interface
	stopCh   chan struct{}
	stopOnce sync.Once
	jobIDs   map[string]cronv3.EntryID
	domains  interfaces.DomainVerificationService
	team     interfaces.TeamService
}

func NewCronManager(cfg *config.Config, log logger.Logger, k8s kubernetes.Interface, domains interfaces.DomainVerificationService, team interfaces.TeamService) *CronManager {
	return &CronManager{
		cfg:     cfg,
		log:     log,
		k8s:     k8s,
		stopCh:  make(chan struct{}),
		jobIDs:  make(map[string]cronv3.EntryID),
		domains: domains,
		team:    team,
	}
}

// Start runs the crons on the elected leader only.
// Without a k8s client, or with LOCAL_DEV=true, the crons start right away.
func (cm *CronManager) Start(podName, namespace string) error {
	if cm.k8s == nil || os.Getenv("LOCAL_DEV") == "true" {
		cm.log.Info("Starting cron manager in local mode")
		cm.StartCron()
		return nil
	}

	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Name:      leaseName,
			Namespace: namespace,
		},
		Client: cm.k8s.CoordinationV1(),
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: podName,
		},
	}

	errCh := make(chan error, 1)

	go func() {
		le, err := leaderelection.NewLeaderElector(leaderelection.LeaderElectionConfig{
			Lock:            lock,
			ReleaseOnCancel: true,
			LeaseDuration:   LeaseDuration,
			RenewDeadline:   RenewDeadline,
			RetryPeriod:     RetryPeriod,
			Callbacks: leaderelection.LeaderCallbacks{
				OnStartedLeading: func(ctx context.Context) {
					cm.StartCron()
				},
				OnStoppedLeading: func() {
					cm.log.Info("Leader lost - stopping crons")
					cm.Stop()
				},
				OnNewLeader: func(identity string) {
					cm.log.Infof("New leader elected: %s", identity)
				},
			},
		})
		if err != nil {
			errCh <- err
			return
		}

		le.Run(context.Background())
	}()

	select {
	case err := <-errCh:
		cm.log.Warnf("Leader election failed, falling back to local mode: %v", err)
		cm.StartCron()
	case <-time.After(5 * time.Second):
	}

	return nil
}

// Stop waits for running jobs to finish. Safe to call more than once.
func (cm *CronManager) Stop() {
	cm.stopOnce.Do(func() {
		if cm.cron != nil {
			cm.log.Info("Stopping cron manager")
			<-cm.cron.Stop().Done()
		}
		close(cm.stopCh)
	})
}

func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	cronConfig := cm.cfg.CronConfig

	if cronConfig.CronScheduleHeartbeat != "" {
		podName := ""
		if cm.cfg.AppConfig != nil {
			podName = cm.cfg.AppConfig.PodName
		}
		if podName == "" {
			podName = "local"
		}
		cm.addJob(c, "heartbeat", cronConfig.CronScheduleHeartbeat, func() {
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
	}

	if cronConfig.CronScheduleExpireVerifications != "" {
		cm.addJob(c, "expire_verifications", cronConfig.CronScheduleExpireVerifications, func() {
			jobLocks.locks[GroupExpiry].Lock()
			defer jobLocks.locks[GroupExpiry].Unlock()
			cm.expireVerifications()
		})
	}

	if cronConfig.CronScheduleExpireInvitations != "" {
		cm.addJob(c, "expire_invitations", cronConfig.CronScheduleExpireInvitations, func() {
			jobLocks.locks[GroupExpiry].Lock()
			defer jobLocks.locks[GroupExpiry].Unlock()
			cm.expireInvitations()
		})
	}
}

func (cm *CronManager) addJob(c *cronv3.Cron, name, schedule string, job func()) {
	id, err := c.AddFunc(schedule, func() {
		defer tracing.RecoverAndLogToJaeger(cm.log)
		job()
	})
	if err != nil {
		cm.log.Fatalf("Could not add %s cron job: %v", name, err)
	}
	cm.jobIDs[name] = id
	cm.log.Infof("Registered %s job with schedule: %s", name, schedule)
}

// StartCron starts a scheduler with a seconds field that skips overlapping runs.
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

func (cm *CronManager) expireVerifications() {
	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{AppSource: appSource})
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.expireVerifications")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	expired, err := cm.domains.ExpireStaleVerifications(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to expire domain verifications: %v", err)
		return
	}
	span.LogKV("expired", expired)
}

func (cm *CronManager) expireInvitations() {
	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{AppSource: appSource})
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.expireInvitations")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	expired, err := cm.team.ExpireStaleInvitations(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to expire team invitations: %v", err)
		return
	}
	span.LogKV("expired", expired)
}
