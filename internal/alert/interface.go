package alert

import "context"

// UseCase sends operator alerts.
type UseCase interface {
	// DispatchGroupBanned reports a group automatically banned for repeated violations.
	DispatchGroupBanned(ctx context.Context, input GroupBannedInput) error
	// DispatchPollFailure reports a failed poll cycle. Repeated failures within
	// the throttle window are dropped.
	DispatchPollFailure(ctx context.Context, input PollFailureInput) error
}
