package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/encrypt"
	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/domain"
	serverPort "gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/server/port"
)

var (
	ErrServerOnCreate     = errors.New("error on creating new server")
	ErrServerOnUpdate     = errors.New("error on updating server")
	ErrServerOnDelete     = errors.New("error on deleting server")
	ErrServerNotFound     = errors.New("server not found")
	ErrInvalidServerInput = errors.New("invalid server input")
	ErrNoScanPaths        = errors.New("server has no scan paths configured")
)

type serverService struct {
	repo serverPort.Repo
}

func NewServerService(repo serverPort.Repo) serverPort.Service {
	return &serverService{
		repo: repo,
	}
}

// validateServer ensures the server has the fields every operation relies on
func (s *serverService) validateServer(server *domain.ServerDomain) error {
	if server.Name == "" {
		return fmt.Errorf("server name is required")
	}
	if server.Host == "" {
		return fmt.Errorf("server host is required")
	}
	if server.Port == 0 {
		server.Port = 22
	}
	for _, p := range server.ScanPaths {
		if p == "" {
			return fmt.Errorf("empty scan path is not allowed")
		}
	}
	return nil
}

// sealCredentials encrypts the secret material before it reaches storage
func sealCredentials(server *domain.ServerDomain) error {
	encryptedPassword, err := encrypt.EncryptSecret(server.Password)
	if err != nil {
		return err
	}
	server.Password = encryptedPassword

	encryptedKey, err := encrypt.EncryptSecret(server.SSHKey)
	if err != nil {
		return err
	}
	server.SSHKey = encryptedKey
	return nil
}

// openCredentials decrypts the secret material after it leaves storage
func openCredentials(server *domain.ServerDomain) error {
	password, err := encrypt.DecryptSecret(server.Password)
	if err != nil {
		return fmt.Errorf("failed to decrypt password: %w", err)
	}
	server.Password = password

	key, err := encrypt.DecryptSecret(server.SSHKey)
	if err != nil {
		return fmt.Errorf("failed to decrypt ssh key: %w", err)
	}
	server.SSHKey = key
	return nil
}

func (s *serverService) CreateServer(ctx context.Context, server domain.ServerDomain) (int64, error) {
	log.Printf("Server Service: Creating server %s (%s)", server.Name, server.Host)

	if err := s.validateServer(&server); err != nil {
		log.Printf("Server Service: Validation failed: %v", err)
		return 0, ErrInvalidServerInput
	}

	server.CreatedAt = time.Now()
	server.UpdatedAt = time.Now()

	if err := sealCredentials(&server); err != nil {
		log.Printf("Server Service: Error encrypting credentials: %v", err)
		return 0, ErrServerOnCreate
	}

	serverID, err := s.repo.Create(ctx, server)
	if err != nil {
		log.Printf("Server Service: Error creating server: %v", err)
		return 0, ErrServerOnCreate
	}

	log.Printf("Server Service: Successfully created server with ID: %d", serverID)
	return serverID, nil
}

func (s *serverService) GetServerByID(ctx context.Context, id int64) (*domain.ServerDomain, error) {
	server, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, ErrServerNotFound
	}

	if err := openCredentials(server); err != nil {
		log.Printf("Server Service: Error decrypting credentials for server %d: %v", id, err)
		return nil, err
	}
	return server, nil
}

func (s *serverService) GetServers(ctx context.Context, filter domain.ServerFilter, limit, offset int, sortOptions ...domain.SortOption) ([]domain.ServerDomain, int, error) {
	servers, total, err := s.repo.GetByFilter(ctx, filter, limit, offset, sortOptions...)
	if err != nil {
		return nil, 0, err
	}

	// Listing never needs usable credentials; blank them instead of
	// decrypting so envelopes stay out of list responses.
	for i := range servers {
		servers[i].Password = ""
		servers[i].SSHKey = ""
	}
	return servers, total, nil
}

func (s *serverService) UpdateServer(ctx context.Context, req domain.UpdateRequest) error {
	log.Printf("Server Service: Updating server with ID: %d", req.ID)

	if req.ID == 0 {
		return ErrInvalidServerInput
	}

	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrServerNotFound
	}

	updated := mergeServer(*existing, req)

	if err := s.validateServer(&updated); err != nil {
		log.Printf("Server Service: Validation failed: %v", err)
		return ErrInvalidServerInput
	}

	updated.UpdatedAt = time.Now()
	updated.CreatedAt = existing.CreatedAt

	// Credentials in the update request arrive plaintext and must be
	// sealed; untouched fields keep their stored envelope.
	if req.Password != nil {
		encrypted, err := encrypt.EncryptSecret(updated.Password)
		if err != nil {
			log.Printf("Server Service: Error encrypting password: %v", err)
			return ErrServerOnUpdate
		}
		updated.Password = encrypted
	}
	if req.SSHKey != nil {
		encrypted, err := encrypt.EncryptSecret(updated.SSHKey)
		if err != nil {
			log.Printf("Server Service: Error encrypting ssh key: %v", err)
			return ErrServerOnUpdate
		}
		updated.SSHKey = encrypted
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		log.Printf("Server Service: Error updating server: %v", err)
		return ErrServerOnUpdate
	}
	return nil
}

// mergeServer applies the non-nil request fields over the stored row
func mergeServer(existing domain.ServerDomain, req domain.UpdateRequest) domain.ServerDomain {
	merged := existing

	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.Host != nil {
		merged.Host = *req.Host
	}
	if req.Port != nil {
		merged.Port = *req.Port
	}
	if req.Username != nil {
		merged.Username = *req.Username
	}
	if req.Password != nil {
		merged.Password = *req.Password
	}
	if req.SSHKey != nil {
		merged.SSHKey = *req.SSHKey
	}
	if req.SSHKeyPath != nil {
		merged.SSHKeyPath = *req.SSHKeyPath
	}
	if req.ScanPaths != nil {
		merged.ScanPaths = req.ScanPaths
	}
	if req.Active != nil {
		merged.Active = *req.Active
	}
	return merged
}

func (s *serverService) DeleteServer(ctx context.Context, id int64) error {
	log.Printf("Server Service: Deleting server with ID: %d", id)

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrServerNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Printf("Server Service: Error deleting server: %v", err)
		return ErrServerOnDelete
	}
	return nil
}

func (s *serverService) UpdateLastScan(ctx context.Context, id int64, at time.Time) error {
	return s.repo.UpdateLastScan(ctx, id, at)
}

func (s *serverService) GetDueForScan(ctx context.Context, cutoff time.Time) ([]domain.ServerDomain, error) {
	servers, err := s.repo.GetDueForScan(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	// Servers whose credentials fail to decrypt never reach the scheduler.
	due := servers[:0]
	for i := range servers {
		if err := openCredentials(&servers[i]); err != nil {
			log.Printf("Server Service: Skipping server %d, credential decrypt failed: %v", servers[i].ID, err)
			continue
		}
		due = append(due, servers[i])
	}
	return due, nil
}
