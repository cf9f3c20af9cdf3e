package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	appCtx "gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/context"
)

var ErrUnknownJobKind = errors.New("no engine for job module/action")

// DiscoveryEngine runs a site discovery scan against one server.
type DiscoveryEngine interface {
	ExecuteDiscovery(ctx context.Context, serverID int64, jobID int64) (json.RawMessage, error)
}

// IntegrityEngine runs one checksum verification.
type IntegrityEngine interface {
	ExecuteVerification(ctx context.Context, verificationID string, jobID int64) (json.RawMessage, error)
}

// ImmutabilityEngine toggles the immutable attribute for one site and
// restores the standard permission layout.
type ImmutabilityEngine interface {
	Lock(ctx context.Context, siteID string, jobID int64) (json.RawMessage, error)
	Unlock(ctx context.Context, siteID string, jobID int64) (json.RawMessage, error)
	FixPermissions(ctx context.Context, params domain.FixPermissionsParams, jobID int64) (json.RawMessage, error)
}

// Engines groups the dispatch targets the worker can hand a job to.
type Engines struct {
	Discovery    DiscoveryEngine
	Integrity    IntegrityEngine
	Immutability ImmutabilityEngine
}

// Worker is the single background consumer of the job queue. One job runs
// to completion before the next is claimed; a failing job never stops the
// loop.
type Worker struct {
	jobs         jobPort.Service
	engines      Engines
	pollInterval time.Duration
	running      bool
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

func NewWorker(jobs jobPort.Service, engines Engines, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Worker{
		jobs:         jobs,
		engines:      engines,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start launches the polling loop. An in-flight job finishes before Stop
// returns.
func (w *Worker) Start() {
	if w.running {
		log.Println("Worker: already running")
		return
	}
	w.running = true
	w.wg.Add(1)

	log.Printf("Worker: starting with poll interval %s", w.pollInterval)

	go func() {
		defer w.wg.Done()
		for {
			w.drainQueue()

			select {
			case <-time.After(w.pollInterval):
			case <-w.stopChan:
				log.Println("Worker: stopping")
				return
			}
		}
	}()
}

// Stop halts the loop after the current job, if any, completes.
func (w *Worker) Stop() {
	if !w.running {
		return
	}
	close(w.stopChan)
	w.wg.Wait()
	w.running = false
}

// drainQueue claims and runs pending jobs until the queue is empty or the
// worker is asked to stop.
func (w *Worker) drainQueue() {
	for {
		select {
		case <-w.stopChan:
			return
		default:
		}

		ctx := context.Background()

		job, found, err := w.jobs.ClaimNextJob(ctx)
		if err != nil {
			log.Printf("Worker: claim failed: %v", err)
			return
		}
		if !found {
			return
		}

		w.runJob(ctx, job)
	}
}

// runJob dispatches one claimed job and finalizes it. A panic inside an
// engine is converted into a job failure so a single bad job cannot take
// the worker down.
func (w *Worker) runJob(ctx context.Context, job *domain.Job) {
	jobCtx := appCtx.NewAppContextWithJob(ctx, job.ID)
	log.Printf("Worker: running job %d (%s/%s)", job.ID, job.Module, job.Action)

	result, err := w.dispatch(jobCtx, job)
	if err != nil {
		log.Printf("Worker: job %d failed: %v", job.ID, err)
		if failErr := w.jobs.FailJob(ctx, job.ID, err.Error()); failErr != nil {
			log.Printf("Worker: could not record failure of job %d: %v", job.ID, failErr)
		}
		return
	}

	if err := w.jobs.CompleteJob(ctx, job.ID, result); err != nil {
		log.Printf("Worker: could not record completion of job %d: %v", job.ID, err)
		return
	}
	log.Printf("Worker: job %d completed", job.ID)
}

func (w *Worker) dispatch(ctx context.Context, job *domain.Job) (result json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()

	switch {
	case job.Module == domain.ModuleDiscovery && job.Action == domain.ActionScan:
		serverID, err := discoveryServerID(job)
		if err != nil {
			return nil, err
		}
		return w.engines.Discovery.ExecuteDiscovery(ctx, serverID, job.ID)

	case job.Module == domain.ModuleIntegrity && job.Action == domain.ActionVerify:
		var params domain.VerifyParams
		if err := unmarshalParams(job.Params, &params); err != nil {
			return nil, err
		}
		if params.VerificationID == "" {
			return nil, errors.New("verify job has no verification_id")
		}
		return w.engines.Integrity.ExecuteVerification(ctx, params.VerificationID, job.ID)

	case job.Module == domain.ModuleImmutability && job.Action == domain.ActionLock:
		siteID, err := immutabilitySiteID(job)
		if err != nil {
			return nil, err
		}
		return w.engines.Immutability.Lock(ctx, siteID, job.ID)

	case job.Module == domain.ModuleImmutability && job.Action == domain.ActionUnlock:
		siteID, err := immutabilitySiteID(job)
		if err != nil {
			return nil, err
		}
		return w.engines.Immutability.Unlock(ctx, siteID, job.ID)

	case job.Module == domain.ModuleImmutability && job.Action == domain.ActionFixPerms:
		var params domain.FixPermissionsParams
		if err := unmarshalParams(job.Params, &params); err != nil {
			return nil, err
		}
		if params.SiteID == "" && job.SiteID != nil {
			params.SiteID = *job.SiteID
		}
		if params.SiteID == "" {
			return nil, errors.New("permission job has no site reference")
		}
		return w.engines.Immutability.FixPermissions(ctx, params, job.ID)
	}

	return nil, fmt.Errorf("%w: %s/%s", ErrUnknownJobKind, job.Module, job.Action)
}

// discoveryServerID reads the target server from params, falling back to
// the job's server reference when the payload is absent or malformed.
func discoveryServerID(job *domain.Job) (int64, error) {
	var params domain.ScanParams
	if err := unmarshalParams(job.Params, &params); err == nil && params.ServerID != 0 {
		return params.ServerID, nil
	}
	if job.ServerID != nil && *job.ServerID != 0 {
		return *job.ServerID, nil
	}
	return 0, errors.New("scan job has no server reference")
}

func immutabilitySiteID(job *domain.Job) (string, error) {
	var params domain.ImmutabilityParams
	if err := unmarshalParams(job.Params, &params); err == nil && params.SiteID != "" {
		return params.SiteID, nil
	}
	if job.SiteID != nil && *job.SiteID != "" {
		return *job.SiteID, nil
	}
	return "", errors.New("immutability job has no site reference")
}

// unmarshalParams treats an empty payload as the zero value; malformed
// payloads surface as errors for the callers that have no fallback.
func unmarshalParams(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
