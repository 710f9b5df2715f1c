package entity

import "strings"

// PurposeStatus is advisory; any value may follow any other.
type PurposeStatus string

const (
	PurposeStatusPending    PurposeStatus = "pending"
	PurposeStatusApproved   PurposeStatus = "approved"
	PurposeStatusRejected   PurposeStatus = "rejected"
	PurposeStatusInProgress PurposeStatus = "in-progress"
	PurposeStatusCompleted  PurposeStatus = "completed"
)

func ParsePurposeStatus(s string) (PurposeStatus, bool) {
	switch v := PurposeStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case PurposeStatusPending, PurposeStatusApproved, PurposeStatusRejected,
		PurposeStatusInProgress, PurposeStatusCompleted:
		return v, true
	}
	return "", false
}

// TokenStatus transitions are unconstrained as well.
type TokenStatus string

const (
	TokenStatusNew        TokenStatus = "new"
	TokenStatusInProgress TokenStatus = "in-progress"
	TokenStatusCompleted  TokenStatus = "completed"
)

func ParseTokenStatus(s string) (TokenStatus, bool) {
	switch v := TokenStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case TokenStatusNew, TokenStatusInProgress, TokenStatusCompleted:
		return v, true
	}
	return "", false
}
