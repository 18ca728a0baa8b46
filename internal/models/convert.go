package models

import (
	"strings"
	"time"
)

// NewAccount splits a validated registration into the credential record
// and the public profile stored for it. passwordHash replaces the plain
// password; donorAvailable is used when a donor did not state availability.
func NewAccount(id string, reg Registration, passwordHash string, donorAvailable bool, now time.Time) (User, Profile) {
	base := reg.Base()
	email := strings.ToLower(strings.TrimSpace(base.Email))
	user := User{
		ID:        id,
		Email:     email,
		Password:  passwordHash,
		Role:      reg.Role(),
		CreatedAt: now,
	}
	p := Profile{
		ID:        id,
		UserType:  reg.Role(),
		Email:     email,
		Phone:     base.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch r := reg.(type) {
	case *PatientRegistration:
		p.FirstName, p.LastName = r.FirstName, r.LastName
		p.Address, p.City, p.State = r.Address, r.City, r.State
		p.BloodType = r.BloodType
		p.SeverityLevel = r.SeverityLevel
		p.Specific = SpecificData{
			"blood_type":       r.BloodType,
			"date_of_birth":    r.DateOfBirth,
			"thalassemia_type": r.ThalassemiaType,
			"severity_level":   r.SeverityLevel,
		}
	case *DonorRegistration:
		available := donorAvailable
		if r.Available != nil {
			available = *r.Available
		}
		p.City, p.State = r.City, r.State
		p.BloodType = r.BloodType
		p.Available = &available
		p.Specific = SpecificData{
			"blood_type":         r.BloodType,
			"last_donation_date": r.LastDonation,
			"total_donations":    0,
			"available":          available,
			"contact_preference": r.ContactPreference,
		}
	case *HospitalRegistration:
		rating := 0.0
		p.Name = r.Name
		p.Address, p.City, p.State = r.Address, r.City, r.State
		p.ThalassemiaSpecialist = r.ThalassemiaSpecialist
		p.Rating = &rating
		p.Location = &GeoPoint{Lat: *r.Latitude, Lng: *r.Longitude}
		p.Specific = SpecificData{
			"services":               r.Services,
			"rating":                 rating,
			"total_ratings":          0,
			"thalassemia_specialist": *r.ThalassemiaSpecialist,
		}
	case *DoctorRegistration:
		available := true
		if r.Available != nil {
			available = *r.Available
		}
		p.FirstName, p.LastName = r.FirstName, r.LastName
		p.City, p.State = r.City, r.State
		p.ThalassemiaSpecialist = r.ThalassemiaSpecialist
		p.Available = &available
		p.Specific = SpecificData{
			"specialization":         r.Specialization,
			"experience_years":       *r.ExperienceYears,
			"license_number":         r.LicenseNumber,
			"consultation_fee":       *r.ConsultationFee,
			"thalassemia_specialist": *r.ThalassemiaSpecialist,
			"available":              available,
		}
	}
	return user, p
}

// DonationCutoff is the latest last-donation date (YYYY-MM-DD) at which a
// donor counts as available again at t.
func DonationCutoff(t time.Time, cooldown time.Duration) string {
	return t.Add(-cooldown).Format("2006-01-02")
}
