package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
)

// Code maps a failure kind onto the gRPC status code used across transports.
func Code(err error) codes.Code {
	switch domain.KindOf(err) {
	case domain.ErrNotFound:
		return codes.NotFound
	case domain.ErrInvalidArgument:
		return codes.InvalidArgument
	case domain.ErrConflict:
		return codes.AlreadyExists
	case domain.ErrUnavailable:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

func HTTPStatus(err error) int {
	return runtime.HTTPStatusFromCode(Code(err))
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	message := err.Error()
	if !domain.IsDomain(err) {
		message = domain.OperationFailed().Error()
	}
	c.AbortWithStatusJSON(HTTPStatus(err), gin.H{"error": message, "code": Code(err).String()})
}

func writeBindError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)

	message := "invalid request body"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		message = describeField(verrs[0])
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "code": codes.InvalidArgument.String()})
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "seat_class":
		return fe.Field() + " must be one of ECONOMY, BUSINESS, FIRST"
	case "flight_status":
		return fe.Field() + " must be one of ON_TIME, DELAYED, CANCELLED"
	case "gte", "gt", "min":
		return fe.Field() + " must be at least " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
