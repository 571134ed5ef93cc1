package types

import "time"

// Toast represents a notification message
type Toast struct {
	Level   ToastLevel
	Message string
	Expires time.Time
	// Count is how many times the same toast was raised while visible
	Count int
}

// ToastLevel indicates the severity of a toast
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// NewToast creates a toast that expires after ttl
func NewToast(level ToastLevel, message string, now time.Time, ttl time.Duration) Toast {
	return Toast{Level: level, Message: message, Expires: now.Add(ttl), Count: 1}
}

// PushToast adds t to the stack. A visible toast with the same level and
// message is folded into t instead: its count carries over and it moves to
// the newest position with t's expiry.
func PushToast(toasts []Toast, t Toast) []Toast {
	t.Count = max(t.Count, 1)
	for i, old := range toasts {
		if old.Level != t.Level || old.Message != t.Message {
			continue
		}
		t.Count += max(old.Count, 1)
		toasts = append(toasts[:i], toasts[i+1:]...)
		break
	}
	return append(toasts, t)
}

// PruneToasts drops toasts that have expired at now, keeping order
func PruneToasts(toasts []Toast, now time.Time) []Toast {
	kept := toasts[:0]
	for _, t := range toasts {
		if now.Before(t.Expires) {
			kept = append(kept, t)
		}
	}
	return kept
}
