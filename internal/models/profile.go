package models

import (
	"strings"
	"time"
)

// Profile is a registered account as listed on the dashboard. The
// attributes the dashboard filters on are kept flat on the record; the
// rest of the role-specific data lives in Specific and is served by the
// detail endpoint.
type Profile struct {
	ID        string `bson:"_id" json:"id"`
	UserType  Role   `bson:"user_type" json:"user_type"`
	FirstName string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Name      string `bson:"name,omitempty" json:"name,omitempty"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`
	City      string `bson:"city,omitempty" json:"city,omitempty"`
	State     string `bson:"state,omitempty" json:"state,omitempty"`

	BloodType             string    `bson:"blood_type,omitempty" json:"blood_type,omitempty"`
	Available             *bool     `bson:"available,omitempty" json:"available,omitempty"`
	ThalassemiaSpecialist *bool     `bson:"thalassemia_specialist,omitempty" json:"thalassemia_specialist,omitempty"`
	SeverityLevel         string    `bson:"severity_level,omitempty" json:"severity_level,omitempty"`
	Rating                *float64  `bson:"rating,omitempty" json:"rating,omitempty"`
	Location              *GeoPoint `bson:"location,omitempty" json:"location,omitempty"`

	Specific  SpecificData `bson:"specific,omitempty" json:"-"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at" json:"updated_at"`
}

type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// DisplayName prefers the organisation name, then the person's name, then
// the email address.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if n := strings.TrimSpace(p.FirstName + " " + p.LastName); n != "" {
		return n
	}
	return p.Email
}

// SpecificData is the role-shaped detail mapping of a profile.
type SpecificData map[string]any

// DetailField names one entry of SpecificData worth showing for a role.
type DetailField struct {
	Key   string
	Label string
}

// DetailFields lists, per role, the specific data keys a profile card shows.
func DetailFields(role Role) []DetailField {
	switch role {
	case RoleDonor:
		return []DetailField{
			{"blood_type", "Blood Type"},
			{"total_donations", "Total Donations"},
			{"last_donation_date", "Last Donation"},
			{"contact_preference", "Contact Preference"},
		}
	case RolePatient:
		return []DetailField{
			{"blood_type", "Blood Type"},
			{"thalassemia_type", "Thalassemia Type"},
			{"severity_level", "Severity"},
		}
	case RoleHospital:
		return []DetailField{
			{"services", "Services"},
			{"rating", "Rating"},
			{"thalassemia_specialist", "Thalassemia Specialist"},
		}
	case RoleDoctor:
		return []DetailField{
			{"specialization", "Specialization"},
			{"experience_years", "Experience (years)"},
			{"consultation_fee", "Consultation Fee"},
			{"available", "Available"},
		}
	}
	return nil
}

// ProfileDetail is the body of GET /profiles/{id}.
type ProfileDetail struct {
	Profile      Profile      `json:"profile"`
	SpecificData SpecificData `json:"specific_data"`
}

// Detail pairs p with its role-specific data, never nil.
func (p Profile) Detail() ProfileDetail {
	specific := p.Specific
	if specific == nil {
		specific = SpecificData{}
	}
	return ProfileDetail{Profile: p, SpecificData: specific}
}

// PatientResources is the body of GET /resources/for-patient: donors who can
// give blood to the patient and specialist hospitals in the patient's city.
type PatientResources struct {
	BloodType           string          `json:"blood_type"`
	City                string          `json:"city"`
	MatchedDonors       []ProfileDetail `json:"matched_donors"`
	SpecialistHospitals []ProfileDetail `json:"specialist_hospitals"`
}

// ServiceHospitals is the body of GET /hospitals/by-services.
type ServiceHospitals struct {
	Hospitals []ProfileDetail `json:"hospitals"`
	Count     int             `json:"count"`
}

// ProfileList is the body of GET /profiles and POST /search.
type ProfileList struct {
	Profiles []Profile `json:"profiles"`
	Count    int       `json:"count"`
}
