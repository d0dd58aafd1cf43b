package entity

import "time"

// maxAuditDetail bounds the free-text detail stored with an audit entry.
const maxAuditDetail = 500

// AuditEntry is an append-only record of a privileged mutation. Entries are
// written exactly once per mutation and never updated or deleted.
type AuditEntry struct {
	ID        int64
	ActorID   int64     // User who performed the mutation.
	TargetID  int64     // User the mutation affected; zero when not applicable.
	Action    string    // Short action tag, e.g. "admin.user.update".
	Detail    string    // Free-text description, truncated to maxAuditDetail.
	ClientIP  string    // Remote address of the request that caused the mutation.
	CreatedAt time.Time
}

// NewAuditEntry builds an entry with the detail text bounded.
func NewAuditEntry(actorID, targetID int64, action, detail, clientIP string) *AuditEntry {
	if len(detail) > maxAuditDetail {
		detail = detail[:maxAuditDetail]
	}

	return &AuditEntry{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
		Detail:   detail,
		ClientIP: clientIP,
	}
}
