package models

import "errors"

var ErrNoVerifiedAccount = errors.New("verification response carries no account")

// MemberLoginResponse is the member signin payload. TwoFARequired signals the
// step-up challenge; TwoFAConfigured and TwoFABypass drive the setup decision
// after a plain success.
type MemberLoginResponse struct {
	User            Member `json:"user"`
	ExpiresAt       string `json:"expires_at"`
	TwoFARequired   bool   `json:"two_fa_required"`
	TwoFAConfigured bool   `json:"two_fa_configured"`
	TwoFABypass     bool   `json:"two_fa_bypass"`
}

// OrganizationLoginResponse is the organization signin payload. The
// organization path never carries a second factor.
type OrganizationLoginResponse struct {
	Organization Organization `json:"organization"`
	ExpiresAt    string       `json:"expires_at"`
}

// TwoFASetup is the setup-initiate payload: a base64 PNG QR code plus
// one-time backup codes.
type TwoFASetup struct {
	QRCode      string   `json:"qr_code"`
	BackupCodes []string `json:"backup_codes"`
}

// TwoFAStatus reports whether the second factor is configured or bypassed.
type TwoFAStatus struct {
	Enabled bool `json:"enabled"`
	Bypass  bool `json:"bypass"`
}

// TwoFAVerifyResponse is the OTP/backup-code verification payload. Exactly
// one of User/Organization is set and decides the landing page.
type TwoFAVerifyResponse struct {
	User         *Member       `json:"user,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	ExpiresAt    string        `json:"expires_at"`
}

// Account returns whichever variant the verification response carries.
func (r TwoFAVerifyResponse) Account() (Account, error) {
	switch {
	case r.User != nil:
		return *r.User, nil
	case r.Organization != nil:
		return *r.Organization, nil
	default:
		return nil, ErrNoVerifiedAccount
	}
}
