package services

import (
	"errors"
	"net/http"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
)

var (
	ErrInvalidReportState = models.ErrInvalidReportState
	ErrPenaltyNotActive   = models.ErrPenaltyNotActive
	ErrDailyLimitExceeded = models.ErrDailyLimitExceeded
	ErrInsufficientPoints = models.ErrInsufficientPoints
	ErrInvalidPoints      = models.ErrInvalidPoints

	ErrReportNotFound       = errors.New("report not found")
	ErrPenaltyNotFound      = errors.New("penalty not found")
	ErrDuplicateReport      = errors.New("you have already reported this content")
	ErrSelfReport           = errors.New("cannot report your own content")
	ErrReporterRequired     = errors.New("reporter is required")
	ErrReviewerRequired     = errors.New("reviewer is required")
	ErrInvalidReason        = errors.New("invalid report reason")
	ErrInvalidTarget        = errors.New("invalid report target")
	ErrTargetNotFound       = errors.New("reported content not found")
	ErrDescriptionTooLong   = errors.New("description must be at most 1000 characters")
	ErrInvalidPenaltyType   = errors.New("invalid penalty type")
	ErrInvalidPointType     = errors.New("invalid point type")
	ErrUserRequired         = errors.New("user is required")
	ErrSanctioned           = errors.New("account is restricted by an active penalty")
	ErrSweepInProgress      = errors.New("penalty sweep already running")
	ErrNotificationNotFound = errors.New("notification not found")
)

// Stable machine-readable codes returned to API clients.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidState       = "INVALID_STATE"
	CodeDuplicateReport    = "DUPLICATE_REPORT"
	CodeDailyLimitExceeded = "DAILY_LIMIT_EXCEEDED"
	CodeInsufficientPoints = "INSUFFICIENT_POINTS"
	CodeNotFound           = "NOT_FOUND"
	CodeSanctioned         = "SANCTIONED"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

type errorClass struct {
	code   string
	status int
}

var errorClasses = []struct {
	errs  []error
	class errorClass
}{
	{[]error{ErrInvalidReportState, ErrPenaltyNotActive}, errorClass{CodeInvalidState, http.StatusConflict}},
	{[]error{ErrDuplicateReport}, errorClass{CodeDuplicateReport, http.StatusConflict}},
	{[]error{ErrSweepInProgress}, errorClass{CodeConflict, http.StatusConflict}},
	{[]error{ErrDailyLimitExceeded}, errorClass{CodeDailyLimitExceeded, http.StatusTooManyRequests}},
	{[]error{ErrInsufficientPoints}, errorClass{CodeInsufficientPoints, http.StatusUnprocessableEntity}},
	{[]error{ErrReportNotFound, ErrPenaltyNotFound, ErrNotificationNotFound}, errorClass{CodeNotFound, http.StatusNotFound}},
	{[]error{ErrSanctioned}, errorClass{CodeSanctioned, http.StatusForbidden}},
	{[]error{
		ErrSelfReport, ErrReporterRequired, ErrReviewerRequired, ErrInvalidReason, ErrInvalidTarget,
		ErrTargetNotFound, ErrDescriptionTooLong, ErrInvalidPenaltyType, ErrInvalidPointType,
		ErrInvalidPoints, ErrUserRequired,
	}, errorClass{CodeValidation, http.StatusBadRequest}},
}

// ErrorCode maps err to its API code and HTTP status. Unknown errors are internal.
func ErrorCode(err error) (string, int) {
	for _, c := range errorClasses {
		for _, target := range c.errs {
			if errors.Is(err, target) {
				return c.class.code, c.class.status
			}
		}
	}
	return CodeInternal, http.StatusInternalServerError
}
