package models

import (
	"fmt"
	"strings"
)

// Role is the kind of account chosen at signup.
type Role string

const (
	RolePatient  Role = "patient"
	RoleDonor    Role = "donor"
	RoleHospital Role = "hospital"
	RoleDoctor   Role = "doctor"
)

// Roles lists every account kind in display order.
var Roles = []Role{RolePatient, RoleDonor, RoleHospital, RoleDoctor}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RolePatient, RoleDonor, RoleHospital, RoleDoctor:
		return r, nil
	}
	return "", fmt.Errorf("unknown user type %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// Category is a dashboard tab. Each tab shows exactly one role.
type Category string

const (
	CategoryDonors    Category = "donors"
	CategoryPatients  Category = "patients"
	CategoryHospitals Category = "hospitals"
	CategoryDoctors   Category = "doctors"
)

var Categories = []Category{CategoryDonors, CategoryPatients, CategoryHospitals, CategoryDoctors}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryDonors, CategoryPatients, CategoryHospitals, CategoryDoctors:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) Role() Role {
	switch c {
	case CategoryDonors:
		return RoleDonor
	case CategoryPatients:
		return RolePatient
	case CategoryHospitals:
		return RoleHospital
	case CategoryDoctors:
		return RoleDoctor
	}
	return ""
}

func (c Category) Label() string {
	switch c {
	case CategoryDonors:
		return "Find Donors"
	case CategoryPatients:
		return "Search Patients"
	case CategoryHospitals:
		return "Hospitals"
	case CategoryDoctors:
		return "Doctors"
	}
	return string(c)
}

// CategoryFor returns the tab listing accounts of the given role.
func CategoryFor(r Role) Category {
	for _, c := range Categories {
		if c.Role() == r {
			return c
		}
	}
	return ""
}
