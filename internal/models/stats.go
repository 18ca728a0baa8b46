package models

// Stats holds the per-role account counts shown on the dashboard.
type Stats struct {
	DonorCount    int64 `json:"donor_count"`
	PatientCount  int64 `json:"patient_count"`
	HospitalCount int64 `json:"hospital_count"`
	DoctorCount   int64 `json:"doctor_count"`
}

// Count returns the number for the given role.
func (s Stats) Count(r Role) int64 {
	switch r {
	case RoleDonor:
		return s.DonorCount
	case RolePatient:
		return s.PatientCount
	case RoleHospital:
		return s.HospitalCount
	case RoleDoctor:
		return s.DoctorCount
	}
	return 0
}

// Set stores n as the count for role.
func (s *Stats) Set(r Role, n int64) {
	switch r {
	case RoleDonor:
		s.DonorCount = n
	case RolePatient:
		s.PatientCount = n
	case RoleHospital:
		s.HospitalCount = n
	case RoleDoctor:
		s.DoctorCount = n
	}
}

// DetailedStats is the body of GET /stats/detailed.
type DetailedStats struct {
	Stats
	AvailableDonors     int64             `json:"available_donors_count"`
	SpecialistHospitals int64             `json:"thalassemia_specialist_hospitals_count"`
	FilteredByLocation  *Stats            `json:"filtered_by_location,omitempty"`
	LocationFilter      map[string]string `json:"location_filter,omitempty"`
}
