package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/klynn-app/orders-api/internal/orders"
)

const statusOneOf = "pending processing shipped delivered canceled"

// New returns a configured validator. Request structs are validated through
// their tags; full order records go through the registered struct-level
// validation so stored and merged data are held to the same schema.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(orderStructValidation, orders.Order{})

	return v
}

// orderStructValidation enforces the order schema on a complete record:
// required references, per-item ranges, non-negative amounts, known status.
func orderStructValidation(sl validatorv10.StructLevel) {
	o := sl.Current().Interface().(orders.Order)

	if o.UserID == "" {
		sl.ReportError(o.UserID, "userId", "UserID", "required", "")
	}
	if o.UserName == "" {
		sl.ReportError(o.UserName, "userName", "UserName", "required", "")
	}
	for i, it := range o.Items {
		if it.Type == "" {
			sl.ReportError(it.Type, fmt.Sprintf("items[%d].type", i), "Type", "required", "")
		}
		if it.Quantity < 1 {
			sl.ReportError(it.Quantity, fmt.Sprintf("items[%d].quantity", i), "Quantity", "min", "1")
		}
		if it.Price < 0 {
			sl.ReportError(it.Price, fmt.Sprintf("items[%d].price", i), "Price", "gte", "0")
		}
	}
	if o.TotalAmount < 0 {
		sl.ReportError(o.TotalAmount, "totalAmount", "TotalAmount", "gte", "0")
	}
	if !o.Status.Valid() {
		sl.ReportError(o.Status, "status", "Status", "oneof", statusOneOf)
	}
}

// OrderValidator adapts the validator to the store's Validator interface.
type OrderValidator struct {
	v *validatorv10.Validate
}

func NewOrderValidator(v *validatorv10.Validate) *OrderValidator {
	return &OrderValidator{v: v}
}

func (ov *OrderValidator) ValidateOrder(o orders.Order) error {
	if err := ov.v.Struct(o); err != nil {
		return toValidationError(err)
	}
	return nil
}

// toValidationError converts validator failures into the domain's tagged
// validation error, keyed by JSON field path.
func toValidationError(err error) error {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return &orders.ValidationError{Fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe)] = reason(fe)
	}
	return &orders.ValidationError{Fields: fields}
}

// fieldPath strips the root struct name from the namespace, leaving the
// JSON-style path, e.g. "items[0].quantity".
func fieldPath(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}
