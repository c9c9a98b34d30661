package chat

import (
	"strconv"

	"github.com/google/uuid"
)

// EntryID distinguishes entries the server has persisted from optimistic
// local ones. Exactly one side is set: a pending id is a client-generated
// UUID, a confirmed id is the server's message id. Timestamps are never
// used as identifiers.
type EntryID struct {
	local  string
	server int
}

func NewPendingID() EntryID {
	return EntryID{local: uuid.New().String()}
}

func ConfirmedID(serverID int) EntryID {
	return EntryID{server: serverID}
}

// Confirmed reports the server id when the entry has been persisted.
func (id EntryID) Confirmed() (int, bool) {
	if id.local != "" {
		return 0, false
	}
	return id.server, true
}

func (id EntryID) String() string {
	if id.local != "" {
		return "local:" + id.local
	}
	return "server:" + strconv.Itoa(id.server)
}
