package models

// AccountView is the redacted shape returned to callers. It never carries
// the password digest.
type AccountView struct {
	ID          int64  `json:"id"`
	AccountName string `json:"account_name"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Profile     string `json:"profile"`
	Role        Role   `json:"role"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func NewAccountView(a *Account) *AccountView {
	if a == nil {
		return nil
	}
	return &AccountView{
		ID:          a.ID,
		AccountName: a.AccountName,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
		Profile:     a.Profile,
		Role:        a.Role,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func NewAccountViews(list []*Account) []*AccountView {
	out := make([]*AccountView, 0, len(list))
	for _, a := range list {
		out = append(out, NewAccountView(a))
	}
	return out
}

// AdminAccountView adds the external identifiers an administrator may see.
// The digest is still withheld.
type AdminAccountView struct {
	AccountView
	UnionID  string `json:"union_id"`
	MpOpenID string `json:"mp_open_id"`
}

func NewAdminAccountView(a *Account) *AdminAccountView {
	if a == nil {
		return nil
	}
	return &AdminAccountView{AccountView: *NewAccountView(a), UnionID: a.UnionID, MpOpenID: a.MpOpenID}
}
