package engine

import "fmt"

// Code numbers the domain errors the way the settlement contract does, so
// callers built against the old numbered codes keep working. 1–15 are the
// contract's own codes; 16+ cover rules that were previously enforced only
// off-chain and surfaced as generic failures.
type Code uint32

const (
	CodeOnlyOwner                Code = 1
	CodeInactiveBounty           Code = 2
	CodeBountyDeadlinePassed     Code = 3
	CodeBountyNotFound           Code = 4
	CodeSubmissionNotFound       Code = 5
	CodeJudgingDeadlinePassed    Code = 6
	CodeDistributionMustSumTo100 Code = 7
	CodeJudgingDeadlineMustBeAfterSubmissionDeadline Code = 8
	CodeNotEnoughWinners         Code = 9
	CodeInternalError            Code = 10
	CodeNotAdmin                 Code = 11
	CodeAdminCannotBeZero        Code = 12
	CodeFeeAccountCannotBeZero   Code = 13
	CodeBountyHasSubmissions     Code = 14
	CodeInvalidDeadlineUpdate    Code = 15
	CodeInvalidReward            Code = 16
	CodeSameFeeAccount           Code = 17
	CodeAlreadyApplied           Code = 18
	CodeTooManyWinners           Code = 19
	CodeOwnerCannotApply         Code = 20
	CodeDuplicateWinner          Code = 21
	CodeInvalidWinner            Code = 22
)

// Error is a typed domain failure. Every public engine operation returns one
// of the sentinel values below (or wraps an unexpected failure in
// ErrInternal); nothing in the engine panics on a guard violation.
type Error struct {
	Code Code
	Name string
}

func (e *Error) Error() string { return e.Name }

var (
	ErrOnlyOwner                = &Error{CodeOnlyOwner, "OnlyOwner"}
	ErrInactiveBounty           = &Error{CodeInactiveBounty, "InactiveBounty"}
	ErrBountyDeadlinePassed     = &Error{CodeBountyDeadlinePassed, "BountyDeadlinePassed"}
	ErrBountyNotFound           = &Error{CodeBountyNotFound, "BountyNotFound"}
	ErrSubmissionNotFound       = &Error{CodeSubmissionNotFound, "SubmissionNotFound"}
	ErrJudgingDeadlinePassed    = &Error{CodeJudgingDeadlinePassed, "JudgingDeadlinePassed"}
	ErrDistributionMustSumTo100 = &Error{CodeDistributionMustSumTo100, "DistributionMustSumTo100"}
	ErrJudgingDeadlineMustBeAfterSubmissionDeadline = &Error{CodeJudgingDeadlineMustBeAfterSubmissionDeadline, "JudgingDeadlineMustBeAfterSubmissionDeadline"}
	ErrNotEnoughWinners       = &Error{CodeNotEnoughWinners, "NotEnoughWinners"}
	ErrInternal               = &Error{CodeInternalError, "InternalError"}
	ErrNotAdmin               = &Error{CodeNotAdmin, "NotAdmin"}
	ErrAdminCannotBeZero      = &Error{CodeAdminCannotBeZero, "AdminCannotBeZero"}
	ErrFeeAccountCannotBeZero = &Error{CodeFeeAccountCannotBeZero, "FeeAccountCannotBeZero"}
	ErrBountyHasSubmissions   = &Error{CodeBountyHasSubmissions, "BountyHasSubmissions"}
	ErrInvalidDeadlineUpdate  = &Error{CodeInvalidDeadlineUpdate, "InvalidDeadlineUpdate"}
	ErrInvalidReward          = &Error{CodeInvalidReward, "InvalidReward"}
	ErrSameFeeAccount         = &Error{CodeSameFeeAccount, "SameFeeAccount"}
	ErrAlreadyApplied         = &Error{CodeAlreadyApplied, "AlreadyApplied"}
	ErrTooManyWinners         = &Error{CodeTooManyWinners, "TooManyWinners"}
	ErrOwnerCannotApply       = &Error{CodeOwnerCannotApply, "OwnerCannotApply"}
	ErrDuplicateWinner        = &Error{CodeDuplicateWinner, "DuplicateWinner"}
	ErrInvalidWinner          = &Error{CodeInvalidWinner, "InvalidWinner"}
)

// internalf wraps an unexpected failure (storage error, corrupted record)
// so it still carries the InternalError code for the HTTP layer while
// keeping the cause in the message for the logs.
func internalf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}
