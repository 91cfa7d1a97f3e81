package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yukimura/org-identity-api/internal/authservice"
	apierrors "github.com/yukimura/org-identity-api/internal/errors"
	"github.com/yukimura/org-identity-api/internal/services"
)

// respondServiceError maps a service-layer error to an HTTP response.
// Validation and precondition failures become 400s, lookups 404s, classified
// Auth Service failures keep their category, and anything unclassified is
// logged and hidden behind a generic message.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidOrganizationName),
		errors.Is(err, services.ErrInvalidSlug),
		errors.Is(err, services.ErrSlugTaken),
		errors.Is(err, services.ErrInvalidLogo),
		errors.Is(err, services.ErrInvalidImage),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrSuccessorRequired),
		errors.Is(err, services.ErrMustKeepOneMembership),
		errors.Is(err, services.ErrMustKeepOneOrganization),
		errors.Is(err, services.ErrNoOrganizations),
		errors.Is(err, services.ErrNoAlternativeOrganization),
		errors.Is(err, services.ErrSlugSpaceExhausted):
		apierrors.BadRequest(c, err.Error())
		return

	case errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrProjectionNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
		return
	}

	var classified *authservice.ClassifiedError
	if errors.As(err, &classified) {
		switch classified.Kind {
		case authservice.KindBadRequest:
			apierrors.BadRequest(c, classified.Message)
		case authservice.KindUnauthorized:
			apierrors.Forbidden(c, classified.Message)
		case authservice.KindNotFound:
			apierrors.NotFound(c, classified.Message)
		default:
			apierrors.UpstreamError(c, classified.Message)
		}
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("unclassified service error")
	apierrors.InternalError(c, "")
}
