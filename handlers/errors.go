package handlers

import (
	"errors"
	"net/http"

	"ptocal/services/calendar"
	"ptocal/services/pto"
	"ptocal/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy to HTTP statuses and renders
// the structured body. Callers never have to parse free text.
func respondError(c *gin.Context, err error) {
	var policyErr *pto.Error
	if errors.As(err, &policyErr) {
		status := http.StatusBadRequest
		switch policyErr.Code {
		case "entitlementExceeded", "overlapError":
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": policyErr.Code, "message": policyErr.Message})
		return
	}

	var batchErr *pto.BatchError
	if errors.As(err, &batchErr) {
		days := make([]gin.H, 0, len(batchErr.Results))
		for _, result := range batchErr.Results {
			day := gin.H{"date": result.Date}
			if result.Err != nil {
				day["error"] = result.Err.Error()
			} else {
				day["event"] = result.Event
			}
			days = append(days, day)
		}
		c.JSON(http.StatusMultiStatus, gin.H{"error": "batchError", "message": batchErr.Error(), "days": days})
		return
	}

	var notFound *calendar.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notFoundError", "message": notFound.Message})
		return
	}
	var authErr *calendar.AuthError
	if errors.As(err, &authErr) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authError", "message": authErr.Message})
		return
	}
	var permErr *calendar.PermissionError
	if errors.As(err, &permErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permissionError", "message": permErr.Message})
		return
	}
	var remoteErr *calendar.RemoteError
	if errors.As(err, &remoteErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "remoteError", "message": remoteErr.Error()})
		return
	}

	var formatErr *utils.FormatError
	var zoneErr *utils.UnknownZoneError
	var intervalErr *utils.InvalidIntervalError
	if errors.As(err, &formatErr) || errors.As(err, &zoneErr) || errors.As(err, &intervalErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validationError", "message": err.Error()})
		return
	}

	utils.JSONError(c, http.StatusInternalServerError, "unexpected error", err.Error())
}
