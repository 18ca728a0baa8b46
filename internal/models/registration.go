package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Account holds the fields every registration carries.
type Account struct {
	UserType Role   `json:"user_type"`
	Email    string `json:"email" validate:"required,emailaddr"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty" validate:"required"`
}

// Registration is the signup payload. The concrete type decides which
// fields are required; only the four variants below implement it.
type Registration interface {
	Role() Role
	Base() *Account
	registration()
}

type PatientRegistration struct {
	Account
	FirstName       string `json:"first_name,omitempty" validate:"required"`
	LastName        string `json:"last_name,omitempty" validate:"required"`
	DateOfBirth     string `json:"date_of_birth,omitempty" validate:"required,datetime=2006-01-02"`
	BloodType       string `json:"blood_type,omitempty" validate:"required,bloodtype"`
	Address         string `json:"address,omitempty" validate:"required"`
	City            string `json:"city,omitempty" validate:"required"`
	State           string `json:"state,omitempty" validate:"required"`
	ThalassemiaType string `json:"thalassemia_type,omitempty"`
	SeverityLevel   string `json:"severity_level,omitempty" validate:"omitempty,oneof=minor intermedia major"`
}

type DonorRegistration struct {
	Account
	BloodType         string `json:"blood_type,omitempty" validate:"required,bloodtype"`
	LastDonation      string `json:"last_donation,omitempty" validate:"required,datetime=2006-01-02"`
	City              string `json:"city,omitempty" validate:"required"`
	State             string `json:"state,omitempty" validate:"required"`
	ContactPreference string `json:"contact_preference,omitempty" validate:"required,oneof=email phone both"`
	Available         *bool  `json:"available,omitempty"`
}

type HospitalRegistration struct {
	Account
	Name                  string   `json:"name,omitempty" validate:"required"`
	Address               string   `json:"address,omitempty" validate:"required"`
	City                  string   `json:"city,omitempty" validate:"required"`
	State                 string   `json:"state,omitempty" validate:"required"`
	Services              []string `json:"services,omitempty" validate:"required,min=1,dive,required"`
	ThalassemiaSpecialist *bool    `json:"thalassemia_specialist,omitempty" validate:"required"`
	Latitude              *float64 `json:"latitude,omitempty" validate:"required,latitude"`
	Longitude             *float64 `json:"longitude,omitempty" validate:"required,longitude"`
}

type DoctorRegistration struct {
	Account
	FirstName             string   `json:"first_name,omitempty" validate:"required"`
	LastName              string   `json:"last_name,omitempty" validate:"required"`
	Specialization        string   `json:"specialization,omitempty" validate:"required"`
	ExperienceYears       *int     `json:"experience_years,omitempty" validate:"required,min=0,max=80"`
	LicenseNumber         string   `json:"license_number,omitempty" validate:"required"`
	ConsultationFee       *float64 `json:"consultation_fee,omitempty" validate:"required,min=0"`
	ThalassemiaSpecialist *bool    `json:"thalassemia_specialist,omitempty" validate:"required"`
	City                  string   `json:"city,omitempty"`
	State                 string   `json:"state,omitempty"`
	Available             *bool    `json:"available,omitempty"`
}

func (*PatientRegistration) Role() Role  { return RolePatient }
func (*DonorRegistration) Role() Role    { return RoleDonor }
func (*HospitalRegistration) Role() Role { return RoleHospital }
func (*DoctorRegistration) Role() Role   { return RoleDoctor }

func (r *PatientRegistration) Base() *Account  { return &r.Account }
func (r *DonorRegistration) Base() *Account    { return &r.Account }
func (r *HospitalRegistration) Base() *Account { return &r.Account }
func (r *DoctorRegistration) Base() *Account   { return &r.Account }

func (*PatientRegistration) registration()  {}
func (*DonorRegistration) registration()    {}
func (*HospitalRegistration) registration() {}
func (*DoctorRegistration) registration()   {}

// EncodeRegistration renders the signup body. Empty optional fields are
// left out and user_type always matches the variant.
func EncodeRegistration(r Registration) ([]byte, error) {
	r.Base().UserType = r.Role()
	return json.Marshal(r)
}

// DecodeRegistration reads a signup body into the variant named by its
// user_type field.
func DecodeRegistration(data []byte) (Registration, error) {
	var head struct {
		UserType string `json:"user_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode registration: %w", err)
	}
	role, err := ParseRole(head.UserType)
	if err != nil {
		return nil, err
	}
	reg := newVariant(role)
	if err := json.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("decode %s registration: %w", role, err)
	}
	reg.Base().UserType = role
	return reg, nil
}

func newVariant(role Role) Registration {
	switch role {
	case RolePatient:
		return &PatientRegistration{}
	case RoleDonor:
		return &DonorRegistration{}
	case RoleHospital:
		return &HospitalRegistration{}
	case RoleDoctor:
		return &DoctorRegistration{}
	}
	panic(fmt.Sprintf("models: no registration variant for role %q", role))
}

// NewRegistration builds the variant for role out of raw form values.
// Values that fail to parse (a latitude that is not a number, say) are
// reported per field; missing values are left empty for Validate to catch.
func NewRegistration(role Role, values map[string]string) (Registration, FieldErrors) {
	if !role.Valid() {
		return nil, FieldErrors{"user_type": "Please choose an account type"}
	}
	p := valueParser{values: values, errs: FieldErrors{}}
	account := Account{
		UserType: role,
		Email:    p.str("email"),
		Password: values["password"],
		Phone:    p.str("phone"),
	}

	var reg Registration
	switch role {
	case RolePatient:
		reg = &PatientRegistration{
			Account:         account,
			FirstName:       p.str("first_name"),
			LastName:        p.str("last_name"),
			DateOfBirth:     p.str("date_of_birth"),
			BloodType:       strings.ToUpper(p.str("blood_type")),
			Address:         p.str("address"),
			City:            p.str("city"),
			State:           p.str("state"),
			ThalassemiaType: p.str("thalassemia_type"),
			SeverityLevel:   strings.ToLower(p.str("severity_level")),
		}
	case RoleDonor:
		reg = &DonorRegistration{
			Account:           account,
			BloodType:         strings.ToUpper(p.str("blood_type")),
			LastDonation:      p.str("last_donation"),
			City:              p.str("city"),
			State:             p.str("state"),
			ContactPreference: strings.ToLower(p.str("contact_preference")),
			Available:         p.optBool("available"),
		}
	case RoleHospital:
		reg = &HospitalRegistration{
			Account:               account,
			Name:                  p.str("name"),
			Address:               p.str("address"),
			City:                  p.str("city"),
			State:                 p.str("state"),
			Services:              p.list("services"),
			ThalassemiaSpecialist: p.checkbox("thalassemia_specialist"),
			Latitude:              p.float("latitude"),
			Longitude:             p.float("longitude"),
		}
	case RoleDoctor:
		reg = &DoctorRegistration{
			Account:               account,
			FirstName:             p.str("first_name"),
			LastName:              p.str("last_name"),
			Specialization:        p.str("specialization"),
			ExperienceYears:       p.int("experience_years"),
			LicenseNumber:         p.str("license_number"),
			ConsultationFee:       p.float("consultation_fee"),
			ThalassemiaSpecialist: p.checkbox("thalassemia_specialist"),
			City:                  p.str("city"),
			State:                 p.str("state"),
			Available:             p.optBool("available"),
		}
	}
	if len(p.errs) > 0 {
		return reg, p.errs
	}
	return reg, nil
}

type valueParser struct {
	values map[string]string
	errs   FieldErrors
}

func (p valueParser) str(key string) string {
	return strings.TrimSpace(p.values[key])
}

func (p valueParser) list(key string) []string {
	var out []string
	for _, s := range strings.Split(p.values[key], ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (p valueParser) float(key string) *float64 {
	s := p.str(key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.errs[key] = humanize(key) + " must be a number"
		return nil
	}
	return &f
}

func (p valueParser) int(key string) *int {
	s := p.str(key)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		p.errs[key] = humanize(key) + " must be a whole number"
		return nil
	}
	return &n
}

// checkbox reads an HTML checkbox; an unchecked box is simply absent.
func (p valueParser) checkbox(key string) *bool {
	b := ParseBool(p.values[key])
	return &b
}

func (p valueParser) optBool(key string) *bool {
	if p.str(key) == "" {
		return nil
	}
	return p.checkbox(key)
}

// ParseBool accepts the spellings HTML forms and query strings produce.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes", "y":
		return true
	}
	return false
}
