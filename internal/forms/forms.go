// Package forms validates user input before it is sent to the backend.
//
// Rules and messages follow the browser client's forms so the CLI rejects the
// same input with the same wording.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
)

// Errors maps a form field (by its json name) to the message shown for it
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, " ")
}

// Login is the login form
type Login struct {
	Email    string `json:"email" validate:"required,email_simple"`
	Password string `json:"password" validate:"required,min=7,max=19"`
}

// Register is the sign-up form
type Register struct {
	Name     string `json:"name" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email_simple"`
	Password string `json:"password" validate:"required,min=6"`
}

// ResetPassword is the form used with a mailed reset token
type ResetPassword struct {
	Password        string `json:"password" validate:"required,min=6,max=20"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Profile is the profile update form. Password is only checked when given.
type Profile struct {
	Name     string `json:"name" validate:"required,min=3,max=20"`
	Gender   string `json:"gender" validate:"required"`
	Address  string `json:"address" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"omitempty,min=7,max=19"`
}

// Book is the admin book form. HasFile reports whether a cover was attached.
type Book struct {
	Name        string  `json:"name" validate:"required,min=3,max=20"`
	Description string  `json:"description" validate:"required,min=10"`
	AuthorID    int64   `json:"authorId" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Quantity    int     `json:"quantity" validate:"min=1"`
	HasFile     bool    `json:"file" validate:"required_if=Creating true"`
	Creating    bool    `json:"-"`
}

// Author is the admin author form
type Author struct {
	Name                 string   `json:"name" validate:"required,min=2,max=50"`
	Description          string   `json:"description" validate:"required,min=10,max=500"`
	Gender               string   `json:"gender" validate:"required"`
	ProgrammingLanguages []string `json:"programmingLanguages" validate:"min=1"`
	HasImage             bool     `json:"imageFile" validate:"required_if=Creating true"`
	Creating             bool     `json:"-"`
}

// Order is the checkout form
type Order struct {
	UserName    string `json:"userName" validate:"required,min=3,max=15"`
	Address     string `json:"address" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	OrderMode   string `json:"orderMode" validate:"required,oneof=CASH UPI"`
}

// OrderEdit is the form for changing an order's delivery details. The
// delivery date must fall within ten days of the order's creation.
type OrderEdit struct {
	UserName     string    `json:"userName" validate:"required,min=3,max=20"`
	Address      string    `json:"address" validate:"required"`
	PhoneNumber  string    `json:"phoneNumber" validate:"required"`
	DeliveryDate time.Time `json:"deliveryDate"`
	CreatedAt    time.Time `json:"-"`
}

// DeliveryWindow is how long after creation an order may be delivered
const DeliveryWindow = 10 * 24 * time.Hour

// Review is the book review form
type Review struct {
	Rating float64 `json:"rating" validate:"required,min=1,max=5"`
	Review string  `json:"review" validate:"required,min=4,max=50"`
}

// ReturnRequest is the return/replacement form
type ReturnRequest struct {
	OrderID  int64  `json:"orderId" validate:"required"`
	BookID   int64  `json:"bookId" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
	Type     string `json:"type" validate:"required,oneof=RETURN REPLACEMENT"`
	Reason   string `json:"reason" validate:"required"`
}

// messages holds the text per "field.tag"; "field" alone covers every tag
var messages = map[string]string{
	"Login.email.required":    "Email is required",
	"Login.email":             "Invalid email format",
	"Login.password.required": "Password is required",
	"Login.password":          "Password must be between 7 and 19 characters",

	"Register.name.required":     "Name is required",
	"Register.name":              "Name must be between 3 and 20 characters",
	"Register.email.required":    "Email is required",
	"Register.email":             "Invalid email format",
	"Register.password.required": "Password is required",
	"Register.password":          "Password must be at least 6 characters",

	"ResetPassword.password.required":        "Password is required",
	"ResetPassword.password":                 "Password must be between 6 and 20 characters",
	"ResetPassword.confirmPassword.required": "Confirm Password is required",
	"ResetPassword.confirmPassword":          "Passwords do not match",

	"Profile.name.required":    "Name is required",
	"Profile.name":             "Name must be between 3 and 20 characters",
	"Profile.gender":           "Gender is required",
	"Profile.address.required": "Address is required",
	"Profile.address":          "Address must be between 3 and 50 characters",
	"Profile.password":         "Password must be between 7 and 19 characters",

	"Book.name":        "Name must be 3–20 characters.",
	"Book.description": "Description must be at least 10 characters.",
	"Book.authorId":    "Author is required.",
	"Book.price":       "Price must be a number greater than 0.",
	"Book.quantity":    "Quantity must be at least 1.",
	"Book.file":        "File is required.",

	"Author.name.required":        "Name is required",
	"Author.name":                 "Name must be between 2 and 50 characters",
	"Author.description.required": "Description is required",
	"Author.description":          "Description must be between 10 and 500 characters",
	"Author.gender":               "Please select a gender",
	"Author.programmingLanguages": "Please select at least one language",
	"Author.imageFile":            "Please upload an image",

	"Order.userName":             "Name must be between 3 and 15 characters.",
	"Order.address":              "Address is required.",
	"Order.phoneNumber.required": "Phone number is required.",
	"Order.phoneNumber":          "Enter a valid phone number (10-15 digits, optional +).",
	"Order.orderMode":            "Choose CASH or UPI.",

	"OrderEdit.userName":    "Name must be between 3 and 20 characters.",
	"OrderEdit.address":     "Address is required.",
	"OrderEdit.phoneNumber": "Phone number is required.",

	"Review.rating.required": "Rating is required.",
	"Review.rating":          "Rating must be between 1 and 5.",
	"Review.review":          "Review must be 4-50 characters.",

	"ReturnRequest.orderId":  "Order is required.",
	"ReturnRequest.bookId":   "Book is required.",
	"ReturnRequest.quantity": "Quantity must be at least 1.",
	"ReturnRequest.type":     "Choose RETURN or REPLACEMENT.",
	"ReturnRequest.reason":   "Reason is required.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their json name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// validator's own email tag is stricter than the browser client was
	_ = v.RegisterValidation("email_simple", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return v
}

// Validate checks form and returns the failing fields, or nil
func Validate(form any) error {
	errs := Errors{}

	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate form: %w", err)
		}
		formName := reflect.Indirect(reflect.ValueOf(form)).Type().Name()
		for _, fe := range verrs {
			field := fe.Field()
			if _, seen := errs[field]; seen {
				continue
			}
			errs[field] = message(formName, field, fe.Tag())
		}
	}

	if edit, ok := asOrderEdit(form); ok {
		checkDeliveryDate(edit, errs)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func message(form, field, tag string) string {
	if msg, ok := messages[form+"."+field+"."+tag]; ok {
		return msg
	}
	if msg, ok := messages[form+"."+field]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", field)
}

func asOrderEdit(form any) (OrderEdit, bool) {
	switch f := form.(type) {
	case OrderEdit:
		return f, true
	case *OrderEdit:
		return *f, true
	}
	return OrderEdit{}, false
}

// checkDeliveryDate compares calendar days, the way the date picker does
func checkDeliveryDate(f OrderEdit, errs Errors) {
	minDate := f.CreatedAt.UTC().Format(time.DateOnly)
	maxDate := f.CreatedAt.Add(DeliveryWindow).UTC().Format(time.DateOnly)

	if f.DeliveryDate.IsZero() {
		errs["deliveryDate"] = fmt.Sprintf("Delivery date must be between %s and %s.", minDate, maxDate)
		return
	}
	day := f.DeliveryDate.UTC().Format(time.DateOnly)
	if day < minDate || day > maxDate {
		errs["deliveryDate"] = fmt.Sprintf("Delivery date must be between %s and %s.", minDate, maxDate)
	}
}
