package session

import "voicetable/models"

// SessionStore is the registry of active conversations. Create and Get must be
// safe for concurrent use across sessions; mutation of a returned Session is
// reserved for its single owning connection.
type SessionStore interface {
	Create() *models.Session
	Get(id string) (*models.Session, bool)
	Delete(id string)
}
