// Package models defines the server record shapes the OpenCircle client
// exchanges with the REST backend. All records are owned by the server; the
// client adds no derived identity beyond the tagged account variant below.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role ids assigned by the server. The id discriminates the account variant.
const (
	RoleMember       = 1
	RoleOrganization = 2
)

// AccountKind is the explicit tag of the account variant.
type AccountKind string

const (
	KindMember       AccountKind = "member"
	KindOrganization AccountKind = "organization"
)

var ErrBadAccountShape = errors.New("account shape does not match role_id")

// Image describes a server-hosted asset (profile picture, logo, post or
// event image).
type Image struct {
	ID        int64  `json:"id"`
	Directory string `json:"directory"`
	Filename  string `json:"filename"`
}

// Account is either a Member or an Organization. Exactly one variant is
// active per session; the discriminant agrees with the populated shape.
type Account interface {
	Kind() AccountKind
	AccountUUID() string
	DisplayName() string
	RoleID() int
}

// Member is the member-kind account.
type Member struct {
	ID             int64  `json:"id"`
	AccountID      int64  `json:"account_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	ProfilePicture Image  `json:"profile_picture"`
	UUID           string `json:"uuid"`
	Role           int    `json:"role_id"`
}

func (m Member) Kind() AccountKind   { return KindMember }
func (m Member) AccountUUID() string { return m.UUID }
func (m Member) RoleID() int         { return m.Role }

func (m Member) DisplayName() string {
	return m.FirstName + " " + m.LastName
}

// Organization is the organization-kind account.
type Organization struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"account_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Logo        Image  `json:"logo"`
	Category    string `json:"category"`
	Description string `json:"description"`
	UUID        string `json:"uuid"`
	Role        int    `json:"role_id"`
}

func (o Organization) Kind() AccountKind   { return KindOrganization }
func (o Organization) AccountUUID() string { return o.UUID }
func (o Organization) RoleID() int         { return o.Role }
func (o Organization) DisplayName() string { return o.Name }

// IsMember reports whether a is the member variant.
func IsMember(a Account) bool {
	return a != nil && a.Kind() == KindMember
}

// IsOrganization reports whether a is the organization variant.
func IsOrganization(a Account) bool {
	return a != nil && a.Kind() == KindOrganization
}

// accountProbe holds the union of both variants for shape checking.
type accountProbe struct {
	RoleID    int    `json:"role_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

// DecodeAccount unmarshals an account payload into the variant named by its
// role_id. Payloads whose populated fields disagree with the discriminant are
// rejected with ErrBadAccountShape.
func DecodeAccount(data []byte) (Account, error) {
	var probe accountProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to probe account payload: %w", err)
	}

	switch probe.RoleID {
	case RoleMember:
		if probe.FirstName == "" && probe.LastName == "" {
			return nil, ErrBadAccountShape
		}
		var m Member
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode member account: %w", err)
		}
		return m, nil
	case RoleOrganization:
		if probe.Name == "" || probe.FirstName != "" {
			return nil, ErrBadAccountShape
		}
		var o Organization
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("failed to decode organization account: %w", err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unknown role_id %d: %w", probe.RoleID, ErrBadAccountShape)
	}
}
