package service

import (
	"context"
	"encoding/json"
	"time"

	jobDomain "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
	jobPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
	serverPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/port"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/pkg/logger"
)

var (
	ErrServerNotFound     = server.ErrServerNotFound
	ErrInvalidServerInput = server.ErrInvalidServerInput
	ErrNoScanPaths        = server.ErrNoScanPaths
)

// ServerService exposes server management plus the manual scan trigger.
// Credentials go in through requests and never come back out in responses.
type ServerService struct {
	service serverPort.Service
	jobs    jobPort.Service
}

func NewServerService(srv serverPort.Service, jobs jobPort.Service) *ServerService {
	return &ServerService{service: srv, jobs: jobs}
}

type ServerRequest struct {
	Name       string   `json:"name"`
	Host       string   `json:"host"`
	Port       uint     `json:"port"`
	Username   string   `json:"username"`
	Password   string   `json:"password,omitempty"`
	SSHKey     string   `json:"ssh_key,omitempty"`
	SSHKeyPath string   `json:"ssh_key_path,omitempty"`
	ScanPaths  []string `json:"scan_paths"`
	Active     *bool    `json:"active,omitempty"`
}

type UpdateServerRequest struct {
	Name       *string  `json:"name,omitempty"`
	Host       *string  `json:"host,omitempty"`
	Port       *uint    `json:"port,omitempty"`
	Username   *string  `json:"username,omitempty"`
	Password   *string  `json:"password,omitempty"`
	SSHKey     *string  `json:"ssh_key,omitempty"`
	SSHKeyPath *string  `json:"ssh_key_path,omitempty"`
	ScanPaths  []string `json:"scan_paths,omitempty"`
	Active     *bool    `json:"active,omitempty"`
}

// ServerResponse is the outward shape of a server. Password and key never
// appear here.
type ServerResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Host       string     `json:"host"`
	Port       uint       `json:"port"`
	Username   string     `json:"username"`
	SSHKeyPath string     `json:"ssh_key_path,omitempty"`
	ScanPaths  []string   `json:"scan_paths"`
	Active     bool       `json:"active"`
	LastScanAt *time.Time `json:"last_scan_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type ServerListResponse struct {
	Contents []ServerResponse `json:"contents"`
	Count    int              `json:"count"`
}

type CreateServerResponse struct {
	ID int64 `json:"id"`
}

type TriggerScanResponse struct {
	JobID int64 `json:"job_id"`
}

func serverToResponse(d domain.ServerDomain) ServerResponse {
	return ServerResponse{
		ID:         d.ID,
		Name:       d.Name,
		Host:       d.Host,
		Port:       d.Port,
		Username:   d.Username,
		SSHKeyPath: d.SSHKeyPath,
		ScanPaths:  d.ScanPaths,
		Active:     d.Active,
		LastScanAt: d.LastScanAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (s *ServerService) CreateServer(ctx context.Context, req ServerRequest) (*CreateServerResponse, error) {
	logger.DebugContext(ctx, "API Service: creating server %s", req.Name)

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	id, err := s.service.CreateServer(ctx, domain.ServerDomain{
		Name:       req.Name,
		Host:       req.Host,
		Port:       req.Port,
		Username:   req.Username,
		Password:   req.Password,
		SSHKey:     req.SSHKey,
		SSHKeyPath: req.SSHKeyPath,
		ScanPaths:  req.ScanPaths,
		Active:     active,
	})
	if err != nil {
		return nil, err
	}
	return &CreateServerResponse{ID: id}, nil
}

func (s *ServerService) GetServerByID(ctx context.Context, id int64) (*ServerResponse, error) {
	srv, err := s.service.GetServerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := serverToResponse(*srv)
	return &resp, nil
}

func (s *ServerService) GetServers(ctx context.Context, filter domain.ServerFilter, page, limit int, sorts ...domain.SortOption) (*ServerListResponse, error) {
	servers, total, err := s.service.GetServers(ctx, filter, limit, page*limit, sorts...)
	if err != nil {
		return nil, err
	}

	contents := make([]ServerResponse, 0, len(servers))
	for _, srv := range servers {
		contents = append(contents, serverToResponse(srv))
	}
	return &ServerListResponse{Contents: contents, Count: total}, nil
}

func (s *ServerService) UpdateServer(ctx context.Context, id int64, req UpdateServerRequest) error {
	return s.service.UpdateServer(ctx, domain.UpdateRequest{
		ID:         id,
		Name:       req.Name,
		Host:       req.Host,
		Port:       req.Port,
		Username:   req.Username,
		Password:   req.Password,
		SSHKey:     req.SSHKey,
		SSHKeyPath: req.SSHKeyPath,
		ScanPaths:  req.ScanPaths,
		Active:     req.Active,
	})
}

func (s *ServerService) DeleteServer(ctx context.Context, id int64) error {
	return s.service.DeleteServer(ctx, id)
}

// TriggerScan enqueues a discovery job for the server. The scan itself runs
// in the worker; the caller polls the returned job.
func (s *ServerService) TriggerScan(ctx context.Context, id int64) (*TriggerScanResponse, error) {
	srv, err := s.service.GetServerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(srv.ScanPaths) == 0 {
		return nil, ErrNoScanPaths
	}

	params, err := json.Marshal(jobDomain.ScanParams{ServerID: srv.ID})
	if err != nil {
		return nil, err
	}

	jobID, err := s.jobs.CreateJob(ctx, jobDomain.Job{
		ServerID: &srv.ID,
		Module:   jobDomain.ModuleDiscovery,
		Action:   jobDomain.ActionScan,
		Params:   params,
	})
	if err != nil {
		return nil, err
	}
	return &TriggerScanResponse{JobID: jobID}, nil
}
