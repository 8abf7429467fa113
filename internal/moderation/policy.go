// Package moderation decides the initial approval state of newly created records.
package moderation

// Kind names an entity type subject to the lifecycle.
type Kind string

// Entity kinds.
const (
	KindGroup             Kind = "whatsapp_group"
	KindResource          Kind = "resource"
	KindContactSubmission Kind = "contact_submission"
	KindContact           Kind = "contact"
	KindAnnouncement      Kind = "announcement"
	KindShortLink         Kind = "short_link"
)

// Curated kinds are visible immediately; public submissions wait for an admin.
var approvedOnCreate = map[Kind]bool{
	KindGroup:             true,
	KindContact:           true,
	KindAnnouncement:      true,
	KindResource:          false,
	KindContactSubmission: false,
}

// DefaultApproved returns the approval state a new record of kind starts with.
// moderated is false for kinds that carry no approval flag at all.
func DefaultApproved(kind Kind) (approved bool, moderated bool) {
	approved, moderated = approvedOnCreate[kind]
	return approved, moderated
}

// IsModerated reports whether records of kind carry an approval flag.
func IsModerated(kind Kind) bool {
	_, ok := approvedOnCreate[kind]
	return ok
}
