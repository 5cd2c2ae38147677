package models

// StudentStatus is the lifecycle state of a student record
type StudentStatus string

const (
	StudentStatusActive  StudentStatus = "ACTIVE"
	StudentStatusDeleted StudentStatus = "DELETED" // soft-deleted, sits in the bin
)

// Gender values accepted on student records
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Int64Ptr returns a pointer to v. Handy for nullable section ids.
func Int64Ptr(v int64) *int64 {
	return &v
}

// SameSection reports whether two nullable section ids refer to the same section.
func SameSection(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
