package access

// Channel identifies which input device produced a scan.
type Channel string

const (
	// ChannelFingerprint is the fingerprint sensor input channel.
	ChannelFingerprint Channel = "fingerprint"
	// ChannelRFID is the card reader input channel.
	ChannelRFID Channel = "rfid"
)

// Subject is a person resolved from a raw scan identifier.
// Identity is immutable once resolved for an event.
type Subject struct {
	// Channel is the input channel the subject was resolved on.
	Channel Channel
	// Key is the raw identifier within the channel: the fingerprint slot
	// number in decimal, or the card UID in hex.
	Key string
	// Name is the person's display name.
	Name string
	// Role is the backend role label (faculty, student, admin).
	Role string
}

// Clone returns a copy of the subject.
func (s *Subject) Clone() *Subject {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}
