package worker

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	serverPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/port"
)

// ScanScheduler periodically enqueues discovery jobs for active servers
// whose last scan is older than the scan interval. It only creates jobs;
// all execution stays with the worker so every scan is observable in the
// queue.
type ScanScheduler struct {
	servers       serverPort.Service
	jobs          jobPort.Service
	scanInterval  time.Duration
	checkInterval time.Duration
	running       bool
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewScanScheduler builds the scheduler. A zero scanInterval disables
// scheduled scans entirely.
func NewScanScheduler(servers serverPort.Service, jobs jobPort.Service, scanInterval, checkInterval time.Duration) *ScanScheduler {
	if checkInterval <= 0 {
		checkInterval = time.Minute
	}
	return &ScanScheduler{
		servers:       servers,
		jobs:          jobs,
		scanInterval:  scanInterval,
		checkInterval: checkInterval,
		stopChan:      make(chan struct{}),
	}
}

func (s *ScanScheduler) Start() {
	if s.running {
		log.Println("Scan Scheduler: already running")
		return
	}
	if s.scanInterval <= 0 {
		log.Println("Scan Scheduler: scan interval not configured, scheduled scans disabled")
		return
	}

	s.running = true
	s.wg.Add(1)

	log.Printf("Scan Scheduler: starting, scan interval %s, check interval %s", s.scanInterval, s.checkInterval)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.checkInterval)
		defer ticker.Stop()

		s.enqueueDueScans()

		for {
			select {
			case <-ticker.C:
				s.enqueueDueScans()
			case <-s.stopChan:
				log.Println("Scan Scheduler: stopping")
				return
			}
		}
	}()
}

func (s *ScanScheduler) Stop() {
	if !s.running {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
	s.running = false
}

// enqueueDueScans creates one discovery job per due server, skipping any
// server that already has a scan pending or running.
func (s *ScanScheduler) enqueueDueScans() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.scanInterval)

	due, err := s.servers.GetDueForScan(ctx, cutoff)
	if err != nil {
		log.Printf("Scan Scheduler: could not list due servers: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	log.Printf("Scan Scheduler: %d servers due for scan", len(due))

	for _, server := range due {
		active, err := s.jobs.HasActiveJob(ctx, jobDomain.ModuleDiscovery, jobDomain.ActionScan, server.ID)
		if err != nil {
			log.Printf("Scan Scheduler: active check for server %d failed: %v", server.ID, err)
			continue
		}
		if active {
			continue
		}

		params, err := json.Marshal(jobDomain.ScanParams{ServerID: server.ID})
		if err != nil {
			log.Printf("Scan Scheduler: could not encode params for server %d: %v", server.ID, err)
			continue
		}

		serverID := server.ID
		jobID, err := s.jobs.CreateJob(ctx, jobDomain.Job{
			ServerID: &serverID,
			Module:   jobDomain.ModuleDiscovery,
			Action:   jobDomain.ActionScan,
			Params:   params,
		})
		if err != nil {
			log.Printf("Scan Scheduler: could not enqueue scan for server %d: %v", server.ID, err)
			continue
		}

		log.Printf("Scan Scheduler: enqueued scan job %d for server %s", jobID, server.Name)
	}
}
