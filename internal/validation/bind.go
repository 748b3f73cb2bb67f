package validation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/klynn-app/orders-api/internal/orders"
)

// BindAndValidate binds the JSON body into out and runs validation.
// On failure it writes a 400 response and returns an error so the handler
// can short-circuit.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid request body: " + err.Error(),
			"kind":    "invalid_request_body",
		})
		return err
	}

	if err := v.Struct(out); err != nil {
		verr := toValidationError(err)
		var ve *orders.ValidationError
		if errors.As(verr, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": ve.Error(),
				"kind":    "validation_failed",
				"fields":  ve.Fields,
			})
			return verr
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"message": err.Error(),
			"kind":    "validation_failed",
		})
		return err
	}
	return nil
}
