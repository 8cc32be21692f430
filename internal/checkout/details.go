package checkout

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/farroshouse/ordering/internal/pricing"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

// Address is where a delivery order goes. Ignored for pickup.
type Address struct {
	Street   string
	City     string
	Postcode string
	Country  string
}

// CustomerInfo identifies who placed the order.
type CustomerInfo struct {
	Name    string
	Email   string
	Phone   string
	Address Address
}

// Details is everything the first checkout step collects.
type Details struct {
	Customer            CustomerInfo
	OrderType           pricing.OrderType
	SpecialInstructions string
}

// Normalize trims every field and defaults the order type to delivery.
func (d Details) Normalize() Details {
	d.Customer.Name = strings.TrimSpace(d.Customer.Name)
	d.Customer.Email = strings.TrimSpace(d.Customer.Email)
	d.Customer.Phone = strings.TrimSpace(d.Customer.Phone)
	d.Customer.Address.Street = strings.TrimSpace(d.Customer.Address.Street)
	d.Customer.Address.City = strings.TrimSpace(d.Customer.Address.City)
	d.Customer.Address.Postcode = strings.TrimSpace(d.Customer.Address.Postcode)
	d.Customer.Address.Country = strings.TrimSpace(d.Customer.Address.Country)
	d.SpecialInstructions = strings.TrimSpace(d.SpecialInstructions)
	if d.OrderType == "" {
		d.OrderType = pricing.OrderTypeDelivery
	}
	return d
}

// Validate checks d and returns a *ValidationError naming every bad field, or
// nil. The address is only required for delivery.
func Validate(d Details) error {
	d = d.Normalize()
	fields := make(map[string]string)

	if d.Customer.Name == "" {
		fields["name"] = "Name is required"
	}

	switch {
	case d.Customer.Email == "":
		fields["email"] = "Email is required"
	case !emailPattern.MatchString(d.Customer.Email):
		fields["email"] = "Please enter a valid email address"
	}

	switch {
	case d.Customer.Phone == "":
		fields["phone"] = "Phone number is required"
	case !phonePattern.MatchString(stripSpaces(d.Customer.Phone)):
		fields["phone"] = "Please enter a valid phone number"
	}

	if _, err := pricing.ParseOrderType(string(d.OrderType)); err != nil {
		fields["orderType"] = "Order type must be delivery or pickup"
	}

	if d.OrderType == pricing.OrderTypeDelivery {
		if d.Customer.Address.Street == "" {
			fields["street"] = "Street address is required for delivery"
		}
		if d.Customer.Address.City == "" {
			fields["city"] = "City is required for delivery"
		}
		if d.Customer.Address.Postcode == "" {
			fields["postcode"] = "Postcode is required for delivery"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
