package domain

import "time"

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IsActive reports whether today falls inside [StartDate, EndDate], both ends
// included. Only calendar dates are compared.
func IsActive(e Event, today time.Time) bool {
	d := DateOnly(today)
	return !d.Before(DateOnly(e.StartDate)) && !d.After(DateOnly(e.EndDate))
}

// SplitRecords partitions rows into registrations and assignments, keeping order.
func SplitRecords(records []RegistrationRecord) (registrations, assignments []RegistrationRecord) {
	for _, r := range records {
		if r.Kind() == KindRegistration {
			registrations = append(registrations, r)
		} else {
			assignments = append(assignments, r)
		}
	}
	return registrations, assignments
}

// CountRecords counts registrations and assignments.
func CountRecords(records []RegistrationRecord) (registrations, assignments int) {
	for _, r := range records {
		if r.Kind() == KindRegistration {
			registrations++
		} else {
			assignments++
		}
	}
	return registrations, assignments
}

// IsComplete reports a registration row with designer, boutique and mall set.
func (r RegistrationRecord) IsComplete() bool {
	return r.Kind() == KindRegistration && r.DesignerID != nil && r.BoutiqueID != nil && r.MallID != nil
}

// HasDesigner reports whether the row references designerID.
func (r RegistrationRecord) HasDesigner(designerID uint) bool {
	return r.DesignerID != nil && *r.DesignerID == designerID
}

// HasBoutique reports whether the row references boutiqueID.
func (r RegistrationRecord) HasBoutique(boutiqueID uint) bool {
	return r.BoutiqueID != nil && *r.BoutiqueID == boutiqueID
}

// FindRegistration returns the first registration row matching every given
// id. Nil ids are not constrained; with both nil any registration matches.
func FindRegistration(records []RegistrationRecord, designerID, boutiqueID *uint) (RegistrationRecord, bool) {
	for _, r := range records {
		if r.Kind() != KindRegistration {
			continue
		}
		if designerID != nil && !r.HasDesigner(*designerID) {
			continue
		}
		if boutiqueID != nil && !r.HasBoutique(*boutiqueID) {
			continue
		}
		return r, true
	}
	return RegistrationRecord{}, false
}

// FindCompleteRegistration returns the first complete registration row for boutiqueID.
func FindCompleteRegistration(records []RegistrationRecord, boutiqueID uint) (RegistrationRecord, bool) {
	for _, r := range records {
		if r.IsComplete() && r.HasBoutique(boutiqueID) {
			return r, true
		}
	}
	return RegistrationRecord{}, false
}
