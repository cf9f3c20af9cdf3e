package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/job/domain"
)

func TestJobStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.JobStatus
		to      domain.JobStatus
		allowed bool
	}{
		{"pending to running", domain.JobStatusPending, domain.JobStatusRunning, true},
		{"pending to completed skips running", domain.JobStatusPending, domain.JobStatusCompleted, false},
		{"pending to failed skips running", domain.JobStatusPending, domain.JobStatusFailed, false},
		{"running to completed", domain.JobStatusRunning, domain.JobStatusCompleted, true},
		{"running to failed", domain.JobStatusRunning, domain.JobStatusFailed, true},
		{"running back to pending", domain.JobStatusRunning, domain.JobStatusPending, false},
		{"completed is terminal", domain.JobStatusCompleted, domain.JobStatusRunning, false},
		{"failed is terminal", domain.JobStatusFailed, domain.JobStatusPending, false},
		{"failed cannot complete", domain.JobStatusFailed, domain.JobStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.JobStatusPending.IsTerminal())
	assert.False(t, domain.JobStatusRunning.IsTerminal())
	assert.True(t, domain.JobStatusCompleted.IsTerminal())
	assert.True(t, domain.JobStatusFailed.IsTerminal())
}

func TestValidKind(t *testing.T) {
	tests := []struct {
		module string
		action string
		valid  bool
	}{
		{domain.ModuleDiscovery, domain.ActionScan, true},
		{domain.ModuleIntegrity, domain.ActionVerify, true},
		{domain.ModuleImmutability, domain.ActionLock, true},
		{domain.ModuleImmutability, domain.ActionUnlock, true},
		{domain.ModuleImmutability, domain.ActionFixPerms, true},
		{domain.ModuleDiscovery, domain.ActionVerify, false},
		{domain.ModuleDiscovery, domain.ActionFixPerms, false},
		{domain.ModuleIntegrity, domain.ActionScan, false},
		{domain.ModuleImmutability, domain.ActionScan, false},
		{"backup", domain.ActionScan, false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.module+"/"+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.valid, domain.ValidKind(tt.module, tt.action))
		})
	}
}
