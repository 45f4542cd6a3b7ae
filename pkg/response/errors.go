package response

import (
	"github.com/gin-gonic/gin"

	"github.com/crowdpulse/backend/pkg/apperrors"
)

// FromError maps a service error to the matching HTTP response: not-found to
// 404, scope rejections to 403, conflicts to 409, everything else to 500
// with the given fallback message.
func FromError(c *gin.Context, err error, fallback string) {
	switch {
	case apperrors.IsNotFound(err):
		NotFound(c, err.Error())
	case apperrors.IsForbidden(err):
		Forbidden(c, err.Error())
	default:
		if conflict, ok := apperrors.AsConflict(err); ok {
			Conflict(c, conflict.Error())
			return
		}
		Internal(c, fallback)
	}
}
