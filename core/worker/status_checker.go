// Package worker runs the periodic device reachability probe.
package worker

import (
	"context"
	"net"
	"strconv"
	"time"

	"wakegate/config"
	"wakegate/core/store"
	"wakegate/core/utils"

	"github.com/robfig/cron/v3"
)

// StatusChecker probes devices that declare a probe host over TCP and
// records status transitions. Probes run one goroutine per device with a
// hard timeout, so a slow host never stalls the schedule.
type StatusChecker struct {
	devices   store.DevicesStore
	cron      *cron.Cron
	schedule  string
	probePort int
	timeout   time.Duration
	logger    *utils.Logger
}

func NewStatusChecker(devices store.DevicesStore, cfg config.StatusCheckConfig, logger *utils.Logger) *StatusChecker {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@every 30s"
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	port := cfg.ProbePort
	if port <= 0 {
		port = 22
	}
	return &StatusChecker{
		devices:   devices,
		cron:      cron.New(),
		schedule:  schedule,
		probePort: port,
		timeout:   timeout,
		logger:    logger,
	}
}

func (s *StatusChecker) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.checkAll); err != nil {
		return err
	}
	s.cron.Start()
	if s.logger != nil {
		s.logger.Printf("status checker started schedule=%q", s.schedule)
	}
	return nil
}

func (s *StatusChecker) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *StatusChecker) checkAll() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout+2*time.Second)
	defer cancel()
	devices, err := s.devices.List(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Errorf("status check list devices: %v", err)
		}
		return
	}
	for _, d := range devices {
		if d.ProbeHost == "" {
			continue
		}
		go s.checkDevice(d)
	}
}

func (s *StatusChecker) checkDevice(d store.Device) {
	addr := d.ProbeHost
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(s.probePort))
	}
	status := store.StatusOffline
	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err == nil {
		conn.Close()
		status = store.StatusOnline
	}
	if d.Status == status {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.devices.SetStatus(ctx, d.ID, status); err != nil {
		if s.logger != nil {
			s.logger.Errorf("status update %s: %v", d.MAC, err)
		}
		return
	}
	if s.logger != nil {
		s.logger.Printf("device status changed mac=%s status=%s", d.MAC, status)
	}
}
