package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// Address is a US postal address. It is stored as a JSON column.
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Street    string `json:"street"`
	Street2   string `json:"street2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Normalize trims fields, upper-cases the state and defaults the country to US
func (a Address) Normalize() Address {
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.Street = strings.TrimSpace(a.Street)
	a.Street2 = strings.TrimSpace(a.Street2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = "US"
	}
	return a
}

// Problems returns one message per missing or malformed field
func (a Address) Problems() []string {
	var problems []string
	if strings.TrimSpace(a.Street) == "" {
		problems = append(problems, "Street address is required")
	}
	if strings.TrimSpace(a.City) == "" {
		problems = append(problems, "City is required")
	}
	if strings.TrimSpace(a.State) == "" {
		problems = append(problems, "State is required")
	}
	if !zipPattern.MatchString(strings.TrimSpace(a.ZipCode)) {
		problems = append(problems, "Valid ZIP code is required (e.g., 12345 or 12345-6789)")
	}
	return problems
}

// Validate returns an error listing every problem, or nil
func (a Address) Validate() error {
	problems := a.Problems()
	if len(problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(problems, "; "))
}

// IsEmpty returns true if no location field is set
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.ZipCode == ""
}

// FullName joins the recipient names
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// String formats the address on one line
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	street := a.Street
	if a.Street2 != "" {
		street += " " + a.Street2
	}
	return fmt.Sprintf("%s, %s, %s %s", street, a.City, a.State, a.ZipCode)
}

// Value implements driver.Valuer
func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	if len(data) == 0 {
		*a = Address{}
		return nil
	}
	return json.Unmarshal(data, a)
}
