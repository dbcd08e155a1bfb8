package authz_test

import (
	"testing"

	"go-leave/internal/authz"
	"go-leave/internal/workflow"

	"github.com/stretchr/testify/assert"
)

func pendingRequest(ownerID uint, dept string) workflow.Snapshot {
	return workflow.Snapshot{
		OwnerID:       ownerID,
		Department:    dept,
		ManagerStatus: workflow.StatusPending,
		HRStatus:      workflow.StatusPending,
	}
}

func TestCanView(t *testing.T) {
	req := pendingRequest(10, "IT")

	t.Run("owner sees own request", func(t *testing.T) {
		assert.True(t, authz.CanView(req, authz.Actor{ID: 10, Department: "Finance"}))
	})

	t.Run("admin sees everything", func(t *testing.T) {
		assert.True(t, authz.CanView(req, authz.Actor{ID: 99, IsAdmin: true}))
	})

	t.Run("hr sees everything", func(t *testing.T) {
		assert.True(t, authz.CanView(req, authz.Actor{ID: 99, IsHR: true}))
	})

	t.Run("manager with matching department", func(t *testing.T) {
		assert.True(t, authz.CanView(req, authz.Actor{ID: 99, IsManager: true, Department: "IT"}))
	})

	t.Run("manager with composite department segment match", func(t *testing.T) {
		assert.True(t, authz.CanView(req, authz.Actor{ID: 99, IsManager: true, Department: "IT - Support"}))
	})

	t.Run("negative manager from another department", func(t *testing.T) {
		assert.False(t, authz.CanView(req, authz.Actor{ID: 99, IsManager: true, Department: "Finance"}))
	})

	t.Run("negative plain employee cannot see others", func(t *testing.T) {
		assert.False(t, authz.CanView(req, authz.Actor{ID: 99, Department: "IT"}))
	})
}

func TestCanApproveOrReject(t *testing.T) {
	req := pendingRequest(10, "IT")

	t.Run("negative owner never decides own request", func(t *testing.T) {
		owner := authz.Actor{ID: 10, IsAdmin: true, IsManager: true, IsHR: true, Department: "IT"}
		assert.False(t, authz.CanApproveOrReject(req, owner))
	})

	t.Run("matching manager decides pending manager stage", func(t *testing.T) {
		assert.True(t, authz.CanApproveOrReject(req, authz.Actor{ID: 99, IsManager: true, Department: "IT"}))
	})

	t.Run("admin decides pending manager stage", func(t *testing.T) {
		assert.True(t, authz.CanApproveOrReject(req, authz.Actor{ID: 99, IsAdmin: true}))
	})

	t.Run("negative hr before manager approval", func(t *testing.T) {
		assert.False(t, authz.CanApproveOrReject(req, authz.Actor{ID: 99, IsHR: true}))
	})

	t.Run("hr after manager approval", func(t *testing.T) {
		managerApproved := req
		managerApproved.ManagerStatus = workflow.StatusApproved
		assert.True(t, authz.CanApproveOrReject(managerApproved, authz.Actor{ID: 99, IsHR: true}))
	})

	t.Run("negative manager after manager approval", func(t *testing.T) {
		managerApproved := req
		managerApproved.ManagerStatus = workflow.StatusApproved
		assert.False(t, authz.CanApproveOrReject(managerApproved, authz.Actor{ID: 99, IsManager: true, Department: "IT"}))
	})

	t.Run("negative anyone after rejection", func(t *testing.T) {
		rejected := req
		rejected.ManagerStatus = workflow.StatusRejected
		assert.False(t, authz.CanApproveOrReject(rejected, authz.Actor{ID: 99, IsAdmin: true}))
		assert.False(t, authz.CanApproveOrReject(rejected, authz.Actor{ID: 99, IsHR: true}))
	})

	t.Run("negative manager from another department", func(t *testing.T) {
		assert.False(t, authz.CanApproveOrReject(req, authz.Actor{ID: 99, IsManager: true, Department: "Sales"}))
	})
}

func TestCanEditAndDelete(t *testing.T) {
	req := pendingRequest(10, "IT")

	t.Run("owner while untouched", func(t *testing.T) {
		assert.True(t, authz.CanEdit(req, authz.Actor{ID: 10}))
		assert.True(t, authz.CanDelete(req, authz.Actor{ID: 10}))
	})

	t.Run("negative owner after manager acted", func(t *testing.T) {
		acted := req
		acted.ManagerStatus = workflow.StatusApproved
		assert.False(t, authz.CanEdit(acted, authz.Actor{ID: 10}))
		assert.False(t, authz.CanDelete(acted, authz.Actor{ID: 10}))
	})

	t.Run("admin bypasses the lock", func(t *testing.T) {
		acted := req
		acted.ManagerStatus = workflow.StatusApproved
		acted.HRStatus = workflow.StatusApproved
		assert.True(t, authz.CanEdit(acted, authz.Actor{ID: 99, IsAdmin: true}))
	})

	t.Run("negative non-owner", func(t *testing.T) {
		assert.False(t, authz.CanEdit(req, authz.Actor{ID: 99, IsManager: true, Department: "IT"}))
	})
}

func TestCanManageRequests(t *testing.T) {
	assert.True(t, authz.CanManageRequests(authz.Actor{IsAdmin: true}))
	assert.True(t, authz.CanManageRequests(authz.Actor{IsManager: true}))
	assert.True(t, authz.CanManageRequests(authz.Actor{IsHR: true}))
	assert.False(t, authz.CanManageRequests(authz.Actor{ID: 5}))
}
