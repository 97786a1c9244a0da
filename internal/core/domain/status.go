package domain

import "fmt"

// RecordStatus is the soft-delete flag shared by every entity.
type RecordStatus string

const (
	StatusActive   RecordStatus = "active"
	StatusInactive RecordStatus = "inactive"
)

// ParseRecordStatus accepts only "active" or "inactive".
func ParseRecordStatus(s string) (RecordStatus, error) {
	switch RecordStatus(s) {
	case StatusActive, StatusInactive:
		return RecordStatus(s), nil
	}
	return "", fmt.Errorf("%w: status must be one of: active inactive", ErrValidation)
}
