package domain

import "time"

// InstanceStatus is the lifecycle state of a single attempt at a task.
type InstanceStatus string

const (
	StatusActive          InstanceStatus = "ACTIVE"
	StatusPendingApproval InstanceStatus = "PENDING"
	StatusCompleted       InstanceStatus = "COMPLETED"
	StatusExploded        InstanceStatus = "EXPLODED"
)

// Settled reports whether the status is terminal for availability purposes.
func (s InstanceStatus) Settled() bool {
	return s == StatusCompleted || s == StatusExploded
}

// TaskInstance is one profile's attempt at a catalog task.
//
// Lifecycle: ACTIVE -> PENDING -> COMPLETED, with ACTIVE -> EXPLODED for
// bomb tasks whose deadline lapses. Likes and reports are sets of profile
// IDs; a profile appears at most once in each.
type TaskInstance struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	ProfileID string `json:"profile_id"`

	TimeAccepted  time.Time  `json:"time_accepted"`
	TimeCompleted *time.Time `json:"time_completed,omitempty"`

	Status InstanceStatus `json:"status"`

	PhotoRef string `json:"photo_ref,omitempty"`
	Note     string `json:"note,omitempty"`
	Location string `json:"location,omitempty"`

	// OriginMessage records how the instance came to exist, e.g. a tag.
	OriginMessage string `json:"origin_message"`

	// An instance may tag at most one friend with the same task.
	Tagged     bool   `json:"tagged"`
	TaggedWhom string `json:"tagged_whom,omitempty"`

	Likes   []string `json:"likes,omitempty"`
	Reports []string `json:"reports,omitempty"`
}

// Validate enforces the timestamp/status invariants before persistence.
func (i *TaskInstance) Validate(now time.Time) error {
	if i == nil {
		return ErrInvalidPayload
	}
	if i.TaskID == "" || i.ProfileID == "" {
		return Validationf("task instance requires a task and a profile")
	}
	switch i.Status {
	case StatusActive, StatusPendingApproval, StatusCompleted, StatusExploded:
	default:
		return Validationf("unknown instance status %q", i.Status)
	}
	if i.Status == StatusActive {
		if i.TimeCompleted != nil {
			return Validationf("active instance cannot carry a completion time")
		}
		return nil
	}
	if i.TimeCompleted == nil {
		return Validationf("instance in status %s requires a completion time", i.Status)
	}
	if i.TimeCompleted.Before(i.TimeAccepted) {
		return Validationf("completion time predates acceptance")
	}
	if i.TimeCompleted.After(now) {
		return Validationf("completion time lies in the future")
	}
	return nil
}

// LikedBy reports whether the given profile already likes this instance.
func (i *TaskInstance) LikedBy(profileID string) bool {
	for _, id := range i.Likes {
		if id == profileID {
			return true
		}
	}
	return false
}

// ReportedBy reports whether the given profile already reported this instance.
func (i *TaskInstance) ReportedBy(profileID string) bool {
	for _, id := range i.Reports {
		if id == profileID {
			return true
		}
	}
	return false
}
