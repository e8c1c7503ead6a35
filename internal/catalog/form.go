package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProductForm is what a client submits to create or edit a product. The
// rules live here, not in Store.
type ProductForm struct {
	Name        string   `json:"name" validate:"required,min=3"`
	Price       *float64 `json:"price" validate:"required,min=1"`
	Category    string   `json:"category" validate:"required"`
	Stock       *int     `json:"stock" validate:"omitempty,min=0"`
	Description *string  `json:"description" validate:"omitempty,max=200"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate returns a field -> message map, or nil when the form is valid.
func (f ProductForm) Validate() map[string]string {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Field()] = fieldMessage(e)
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", e.Field(), e.Tag())
	}
}

func (f ProductForm) Fields() Fields {
	var price float64
	if f.Price != nil {
		price = *f.Price
	}
	var desc string
	if f.Description != nil {
		desc = *f.Description
	}
	return Fields{
		Name:        f.Name,
		Price:       price,
		Category:    f.Category,
		Stock:       f.Stock,
		Description: desc,
	}
}

// Apply lays the submitted values over p. ID and CreatedAt come from p,
// and an omitted stock or description keeps p's value.
func (f ProductForm) Apply(p Product) Product {
	fields := f.Fields()
	p.Name = fields.Name
	p.Price = fields.Price
	p.Category = fields.Category
	if f.Stock != nil {
		p.Stock = cloneInt(f.Stock)
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	return p
}
