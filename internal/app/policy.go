package app

import "github.com/dkeye/whowasi/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

func (a BackpressureAction) String() string {
	switch a {
	case NoAction:
		return "none"
	case MarkSlow:
		return "mark_slow"
	case KickMember:
		return "kick"
	case DropFrame:
		return "drop"
	default:
		return "unknown"
	}
}

// Policy decides what to do with a session whose send buffer is full.
type Policy interface {
	OnBackPressure(member core.MemberSession) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.MemberSession) BackpressureAction {
	return KickMember
}

// DropPolicy keeps slow sessions connected and discards the frame.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.MemberSession) BackpressureAction {
	return DropFrame
}
