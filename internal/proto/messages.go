// Package proto defines the accounts.v1.AccountService wire contract shared
// by the gophauth server and its clients. Messages travel as
// google.protobuf.Struct values so no generated code is needed; Encode and
// Decode convert them to and from the typed structs below.
//
// Struct numbers are doubles, so int64 fields are carried as decimal
// strings, as in the protobuf JSON mapping.
package proto

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type Empty struct{}

type RegisterRequest struct {
	AccountName  string `json:"account_name"`
	Password     string `json:"password"`
	Confirmation string `json:"confirmation"`
}

type IDResponse struct {
	ID int64 `json:"id,string"`
}

type LoginRequest struct {
	AccountName string `json:"account_name"`
	Password    string `json:"password"`
}

type OAuthLoginRequest struct {
	Code string `json:"code"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// Account is the wire form of an account. UnionID and MpOpenID are only
// filled for administrators.
type Account struct {
	ID          int64  `json:"id,string"`
	AccountName string `json:"account_name"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Profile     string `json:"profile"`
	Role        string `json:"role"`
	CreatedAt   int64  `json:"created_at,string"`
	UpdatedAt   int64  `json:"updated_at,string"`
	UnionID     string `json:"union_id,omitempty"`
	MpOpenID    string `json:"mp_open_id,omitempty"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Profile     string `json:"profile"`
}

type UploadAvatarRequest struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type UploadAvatarResponse struct {
	URL string `json:"url"`
}

type PresignAvatarRequest struct {
	ContentType string `json:"content_type"`
	// Size is the exact byte length the client will upload.
	Size int64 `json:"size,string"`
}

type PresignAvatarResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url"`
	// ExpiresAt is epoch milliseconds.
	ExpiresAt int64 `json:"expires_at,string"`
}

type IDRequest struct {
	ID int64 `json:"id,string"`
}

type ListAccountsRequest struct {
	AccountName string `json:"account_name"`
	UnionID     string `json:"union_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
}

type ListAccountsResponse struct {
	Accounts []*Account `json:"accounts"`
}

type AddAccountRequest struct {
	AccountName string `json:"account_name"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Role        string `json:"role"`
}

type UpdateAccountRequest struct {
	ID          int64  `json:"id,string"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Profile     string `json:"profile"`
	Role        string `json:"role"`
}

// Encode converts a message into its Struct form.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return s, nil
}

// Decode fills v from s. A nil s decodes as an empty message.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
