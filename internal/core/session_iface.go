package core

import "github.com/dkeye/whowasi/internal/domain"

type SessionID string

// MemberSession binds domain.Member and its transport endpoint.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}
