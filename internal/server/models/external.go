package models

// ExternalProfile is what an OAuth provider tells us about a user.
type ExternalProfile struct {
	UnionID     string
	MpOpenID    string
	DisplayName string
	AvatarURL   string
}
