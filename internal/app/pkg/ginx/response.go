package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"healthbrain/common/model"
	"healthbrain/pkg/errorutil"
)

// Success 成功响应（200）
func Success(c *gin.Context, resp *model.BrainResponse) {
	resp.Success = true
	c.JSON(http.StatusOK, resp)
}

// Error 错误响应 {success:false, error}
func Error(c *gin.Context, httpCode int, message string) {
	c.AbortWithStatusJSON(httpCode, &model.BrainResponse{
		Success: false,
		Error:   message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpCode int, message string, details []model.ErrorDetail) {
	c.AbortWithStatusJSON(httpCode, &model.BrainResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}

// FromError 按错误类型映射状态码
func FromError(c *gin.Context, err error) {
	Error(c, errorutil.HTTPStatus(err), err.Error())
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// BadRequestWithValidation 400 错误（带验证详情）
func BadRequestWithValidation(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]model.ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, model.ErrorDetail{
				Path: fieldErr.Field(),
				Info: getValidationErrorMessage(fieldErr),
			})
		}
		ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details)
		return
	}

	BadRequest(c, err.Error())
}

// TooManyRequests 429 错误
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "rate limit exceeded, retry later")
}

// InternalError 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// getValidationErrorMessage 根据验证错误类型返回友好的错误消息
func getValidationErrorMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "min":
		return fieldErr.Field() + " must be at least " + fieldErr.Param()
	case "max":
		return fieldErr.Field() + " must be at most " + fieldErr.Param()
	case "oneof":
		return fieldErr.Field() + " must be one of: " + fieldErr.Param()
	default:
		return fieldErr.Field() + " is invalid"
	}
}
