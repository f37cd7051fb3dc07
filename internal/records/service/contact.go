package service

import (
	"context"

	"github.com/novaframes/content-admin/internal/records/domain"
)

const discussedField = "discussed"

// Contacts handles the inbound contact-message workflow.
type Contacts struct {
	collections *Collections
}

func NewContacts(collections *Collections) *Contacts {
	return &Contacts{collections: collections}
}

// MarkDiscussed flags a contact message as followed up.
func (s *Contacts) MarkDiscussed(ctx context.Context, id string) error {
	return s.collections.Update(ctx, domain.Contact, id, domain.Record{discussedField: true})
}

// IsDiscussed reads the flag; a message without it has not been discussed.
func IsDiscussed(r domain.Record) bool {
	return r.Bool(discussedField)
}
