package entity

type AccountStatus int16

const (
	// AccountStatusUnknown is mean status is not known / not set.
	AccountStatusUnknown AccountStatus = 0

	// AccountStatusActive mean account is allowed to use the app.
	AccountStatusActive AccountStatus = 1

	// AccountStatusBanned mean account is blocked from using the app (policy/abuse/etc).
	AccountStatusBanned AccountStatus = 2

	// AccountStatusInactive mean account is not currently active (e.g., deactivated, closed).
	AccountStatusInactive AccountStatus = 3
)

func (as AccountStatus) String() string {
	switch as {
	case AccountStatusActive:
		return "Active"
	case AccountStatusBanned:
		return "Banned"
	case AccountStatusInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

func (as AccountStatus) IsUnknown() bool {
	switch as {
	case AccountStatusActive, AccountStatusBanned, AccountStatusInactive:
		return false
	default:
		return true
	}
}

func (as AccountStatus) Ensure() AccountStatus {
	switch as {
	case AccountStatusActive:
		return AccountStatusActive
	case AccountStatusBanned:
		return AccountStatusBanned
	case AccountStatusInactive:
		return AccountStatusInactive
	default:
		return AccountStatusUnknown
	}
}
