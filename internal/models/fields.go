package models

// FieldKind tells the form renderer which input to draw.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindPassword FieldKind = "password"
	KindTel      FieldKind = "tel"
	KindDate     FieldKind = "date"
	KindNumber   FieldKind = "number"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
	KindList     FieldKind = "list"
)

type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Options  []string
}

var (
	fieldEmail    = Field{Name: "email", Label: "Email", Kind: KindEmail, Required: true}
	fieldPassword = Field{Name: "password", Label: "Password", Kind: KindPassword, Required: true}
	fieldPhone    = Field{Name: "phone", Label: "Phone", Kind: KindTel, Required: true}
	fieldCity     = Field{Name: "city", Label: "City", Kind: KindText, Required: true}
	fieldState    = Field{Name: "state", Label: "State", Kind: KindText, Required: true}
	fieldAddress  = Field{Name: "address", Label: "Address", Kind: KindText, Required: true}
	fieldBlood    = Field{Name: "blood_type", Label: "Blood Type", Kind: KindSelect, Required: true, Options: BloodTypes}
	fieldFirst    = Field{Name: "first_name", Label: "First Name", Kind: KindText, Required: true}
	fieldLast     = Field{Name: "last_name", Label: "Last Name", Kind: KindText, Required: true}
	fieldSpecial  = Field{Name: "thalassemia_specialist", Label: "Thalassemia Specialist", Kind: KindCheckbox, Required: true}
	fieldAvail    = Field{Name: "available", Label: "Currently Available", Kind: KindSelect, Options: []string{"yes", "no"}}
)

// FieldsFor lists the registration inputs of role, common fields first.
func FieldsFor(role Role) []Field {
	common := []Field{fieldEmail, fieldPassword, fieldPhone}
	switch role {
	case RolePatient:
		return append(common,
			fieldFirst,
			fieldLast,
			Field{Name: "date_of_birth", Label: "Date of Birth", Kind: KindDate, Required: true},
			fieldBlood,
			fieldAddress,
			fieldCity,
			fieldState,
			Field{Name: "thalassemia_type", Label: "Thalassemia Type", Kind: KindText},
			Field{Name: "severity_level", Label: "Severity Level", Kind: KindSelect, Options: SeverityLevels},
		)
	case RoleDonor:
		return append(common,
			fieldBlood,
			Field{Name: "last_donation", Label: "Last Donation", Kind: KindDate, Required: true},
			fieldCity,
			fieldState,
			Field{Name: "contact_preference", Label: "Contact Preference", Kind: KindSelect, Required: true, Options: []string{"email", "phone", "both"}},
			fieldAvail,
		)
	case RoleHospital:
		return append(common,
			Field{Name: "name", Label: "Hospital Name", Kind: KindText, Required: true},
			fieldAddress,
			fieldCity,
			fieldState,
			Field{Name: "services", Label: "Services (comma separated)", Kind: KindList, Required: true},
			fieldSpecial,
			Field{Name: "latitude", Label: "Latitude", Kind: KindNumber, Required: true},
			Field{Name: "longitude", Label: "Longitude", Kind: KindNumber, Required: true},
		)
	case RoleDoctor:
		return append(common,
			fieldFirst,
			fieldLast,
			Field{Name: "specialization", Label: "Specialization", Kind: KindText, Required: true},
			Field{Name: "experience_years", Label: "Years of Experience", Kind: KindNumber, Required: true},
			Field{Name: "license_number", Label: "License Number", Kind: KindText, Required: true},
			Field{Name: "consultation_fee", Label: "Consultation Fee", Kind: KindNumber, Required: true},
			fieldSpecial,
			Field{Name: "city", Label: "City", Kind: KindText},
			Field{Name: "state", Label: "State", Kind: KindText},
			fieldAvail,
		)
	}
	return nil
}

// HasField reports whether name is an input of role's registration form.
func HasField(role Role, name string) bool {
	for _, f := range FieldsFor(role) {
		if f.Name == name {
			return true
		}
	}
	return false
}
