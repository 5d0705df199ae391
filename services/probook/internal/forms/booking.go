package forms

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/ramo2594/probook/services/probook/internal/model"
)

const PastDateMessage = "You cannot book a date in the past. Choose today or a later date."

// BookingForm carries the raw values of the public booking form.
type BookingForm struct {
	ClientName  string `schema:"client_name" validate:"required,max=100"`
	ClientEmail string `schema:"client_email" validate:"required,email,max=254"`
	Service     string `schema:"service" validate:"required,max=100"`
	Date        string `schema:"date" validate:"required,datetime=2006-01-02"`
	Time        string `schema:"time" validate:"required,timeofday"`
	Notes       string `schema:"notes" validate:"max=5000"`
}

// Errors maps a form field name to its message.
type Errors map[string]string

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

var (
	decoder  = newDecoder()
	validate = newValidator()
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(true)
	return d
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("schema"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := model.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	return v
}

// DecodeBooking reads a BookingForm from submitted form values.
func DecodeBooking(values url.Values) (BookingForm, error) {
	var f BookingForm
	if err := decoder.Decode(&f, values); err != nil {
		return BookingForm{}, fmt.Errorf("decode booking form: %w", err)
	}
	f.ClientName = strings.TrimSpace(f.ClientName)
	f.ClientEmail = strings.TrimSpace(f.ClientEmail)
	f.Service = strings.TrimSpace(f.Service)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	f.Notes = strings.TrimSpace(f.Notes)
	return f, nil
}

// Validate checks the form against today's calendar day and returns the booking it
// describes. Errors is nil when the form is valid.
func (f BookingForm) Validate(today time.Time) (model.Booking, Errors) {
	errs := fieldErrors(validate.Struct(f))
	if errs.Has(NonFieldErrors) {
		return model.Booking{}, errs
	}

	var b model.Booking
	if !errs.Has("date") {
		d, err := model.ParseDate(f.Date)
		switch {
		case err != nil:
			errs["date"] = "Enter a valid date."
		case d.Before(model.DateOf(today)):
			errs["date"] = PastDateMessage
		default:
			b.Date = d
		}
	}
	if !errs.Has("time") {
		tod, err := model.ParseTimeOfDay(f.Time)
		if err != nil {
			errs["time"] = "Enter a valid time."
		} else {
			b.Time = tod
		}
	}
	if len(errs) > 0 {
		return model.Booking{}, errs
	}

	b.ClientName = f.ClientName
	b.ClientEmail = f.ClientEmail
	b.Service = f.Service
	b.Notes = f.Notes
	return b, nil
}

// NonFieldErrors keys messages that belong to no single field.
const NonFieldErrors = "__all__"

func fieldErrors(err error) Errors {
	errs := Errors{}
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs[NonFieldErrors] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		if !errs.Has(fe.Field()) {
			errs[fe.Field()] = message(fe)
		}
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fe.Value().(string))))
	case "datetime":
		return "Enter a valid date."
	case "timeofday":
		return "Enter a valid time."
	default:
		return "Enter a valid value."
	}
}
