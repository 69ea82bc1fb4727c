package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	appauth "bookmytourguide/internal/app/auth"
	appbooking "bookmytourguide/internal/app/booking"
	appcatalog "bookmytourguide/internal/app/catalog"
	appguide "bookmytourguide/internal/app/guide"
	appsub "bookmytourguide/internal/app/subscription"
	apptestimonial "bookmytourguide/internal/app/testimonial"
	apptourrequest "bookmytourguide/internal/app/tourrequest"
	domainauth "bookmytourguide/internal/domain/auth"
	domainbooking "bookmytourguide/internal/domain/booking"
	domainguide "bookmytourguide/internal/domain/guide"
	domainotp "bookmytourguide/internal/domain/otp"
	"bookmytourguide/internal/domain/shared/daterange"
	domainsub "bookmytourguide/internal/domain/subscription"
	domaintestimonial "bookmytourguide/internal/domain/testimonial"
	domaintour "bookmytourguide/internal/domain/tour"
	domaintourrequest "bookmytourguide/internal/domain/tourrequest"
	domainuser "bookmytourguide/internal/domain/user"
)

// envelope is the response shape every endpoint uses.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), envelope{Success: false, Message: err.Error()})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Message: message})
}

// statusFor maps sentinel errors onto HTTP codes. Anything unrecognized is
// a 500 so infrastructure failures never leak as client errors.
func statusFor(err error) int {
	switch {
	case isNotFound(err):
		return http.StatusNotFound
	case isConflict(err):
		return http.StatusConflict
	case isForbidden(err):
		return http.StatusForbidden
	case errors.Is(err, appauth.ErrInvalidCredentials),
		errors.Is(err, domainauth.ErrSessionNotFound):
		return http.StatusUnauthorized
	case isValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domainbooking.ErrNotFound) ||
		errors.Is(err, domainguide.ErrNotFound) ||
		errors.Is(err, domainguide.ErrProfileMissing) ||
		errors.Is(err, domaintour.ErrNotFound) ||
		errors.Is(err, domainuser.ErrNotFound) ||
		errors.Is(err, domaintestimonial.ErrNotFound) ||
		errors.Is(err, domaintourrequest.ErrNotFound) ||
		errors.Is(err, domainsub.ErrNotFound) ||
		errors.Is(err, domainotp.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, domainguide.ErrDatesConflict) ||
		errors.Is(err, domainbooking.ErrConcurrentUpdate) ||
		errors.Is(err, domainuser.ErrEmailAlreadyUsed)
}

func isForbidden(err error) bool {
	return errors.Is(err, appbooking.ErrForbidden) ||
		errors.Is(err, appguide.ErrForbidden) ||
		errors.Is(err, appcatalog.ErrForbidden) ||
		errors.Is(err, apptestimonial.ErrForbidden) ||
		errors.Is(err, apptourrequest.ErrForbidden) ||
		errors.Is(err, appsub.ErrForbidden)
}

func isValidation(err error) bool {
	switch {
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, appbooking.ErrSignatureInvalid),
		errors.Is(err, appbooking.ErrPaymentNotCaptured),
		errors.Is(err, appbooking.ErrAmountRequired),
		errors.Is(err, appbooking.ErrReceiptRequired),
		errors.Is(err, appauth.ErrPasswordTooShort),
		errors.Is(err, domainbooking.ErrInvalidStatus),
		errors.Is(err, domainbooking.ErrInvalidTourists),
		errors.Is(err, domainbooking.ErrPaymentRequired),
		errors.Is(err, domainbooking.ErrNotCancellable),
		errors.Is(err, domainbooking.ErrAlreadyCancelled),
		errors.Is(err, domainbooking.ErrSameGuide),
		errors.Is(err, domainbooking.ErrNotReassignable),
		errors.Is(err, domainbooking.ErrTourRequired),
		errors.Is(err, domainbooking.ErrGuideRequired),
		errors.Is(err, domainguide.ErrInvalidStatus),
		errors.Is(err, domainguide.ErrNameRequired),
		errors.Is(err, domaintour.ErrTitleRequired),
		errors.Is(err, domaintour.ErrInvalidPrice),
		errors.Is(err, domaintestimonial.ErrAuthorRequired),
		errors.Is(err, domaintestimonial.ErrMessageRequired),
		errors.Is(err, domaintourrequest.ErrDestinationRequired),
		errors.Is(err, domaintourrequest.ErrInvalidStatus),
		errors.Is(err, domainsub.ErrNameRequired),
		errors.Is(err, domainsub.ErrInvalidPrice),
		errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrNameRequired),
		errors.Is(err, domainuser.ErrInvalidRole),
		errors.Is(err, domainotp.ErrEmailRequired),
		errors.Is(err, domainotp.ErrCodeRequired),
		errors.Is(err, domainotp.ErrExpired),
		errors.Is(err, domainotp.ErrMismatch):
		return true
	}
	return false
}
