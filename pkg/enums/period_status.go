package enums

import "fmt"

// PeriodStatus classifies a computed commission period relative to now.
type PeriodStatus string

const (
	PeriodStatusPast    PeriodStatus = "past"
	PeriodStatusCurrent PeriodStatus = "current"
	PeriodStatusFuture  PeriodStatus = "future"
)

func (s PeriodStatus) String() string {
	return string(s)
}

// StoredPeriodStatus is the status persisted on goal_periods rows.
type StoredPeriodStatus string

const (
	StoredPeriodActive StoredPeriodStatus = "ativo"
	StoredPeriodClosed StoredPeriodStatus = "encerrado"
	StoredPeriodFuture StoredPeriodStatus = "futuro"
)

var validStoredPeriodStatuses = []StoredPeriodStatus{
	StoredPeriodActive,
	StoredPeriodClosed,
	StoredPeriodFuture,
}

func (s StoredPeriodStatus) String() string {
	return string(s)
}

func (s StoredPeriodStatus) IsValid() bool {
	for _, candidate := range validStoredPeriodStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStoredPeriodStatus converts raw input into a StoredPeriodStatus.
func ParseStoredPeriodStatus(value string) (StoredPeriodStatus, error) {
	for _, candidate := range validStoredPeriodStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stored period status %q", value)
}

// StoredStatusFor maps a computed period status onto its persisted form.
func StoredStatusFor(status PeriodStatus) StoredPeriodStatus {
	switch status {
	case PeriodStatusCurrent:
		return StoredPeriodActive
	case PeriodStatusPast:
		return StoredPeriodClosed
	default:
		return StoredPeriodFuture
	}
}
