package idgen

import (
	"github.com/google/uuid"
)

// ID prefixes for different models
const (
	PrefixAccount  = "acc_"
	PrefixSnapshot = "snap_"
	PrefixStatus   = "stat_"
	PrefixSyncRun  = "run_"
)

// NewAccount generates a new account ID with acc_ prefix
func NewAccount() string {
	return PrefixAccount + uuid.New().String()
}

// NewSnapshot generates a new usage snapshot ID with snap_ prefix
func NewSnapshot() string {
	return PrefixSnapshot + uuid.New().String()
}

// NewStatus generates a new battery status ID with stat_ prefix
func NewStatus() string {
	return PrefixStatus + uuid.New().String()
}

// NewSyncRun generates a new sync run ID with run_ prefix
func NewSyncRun() string {
	return PrefixSyncRun + uuid.New().String()
}

// New generates a generic UUID without prefix (for internal use only)
func New() string {
	return uuid.New().String()
}
