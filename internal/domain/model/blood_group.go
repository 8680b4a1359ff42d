package model

// BloodGroup — группа крови (ABO/Rh).
type BloodGroup string

// Восемь допустимых комбинаций ABO/Rh.
const (
	BloodAPos  BloodGroup = "A+"
	BloodANeg  BloodGroup = "A-"
	BloodBPos  BloodGroup = "B+"
	BloodBNeg  BloodGroup = "B-"
	BloodABPos BloodGroup = "AB+"
	BloodABNeg BloodGroup = "AB-"
	BloodOPos  BloodGroup = "O+"
	BloodONeg  BloodGroup = "O-"
)

// validBloodGroups — множество допустимых групп крови.
var validBloodGroups = map[BloodGroup]bool{
	BloodAPos: true, BloodANeg: true,
	BloodBPos: true, BloodBNeg: true,
	BloodABPos: true, BloodABNeg: true,
	BloodOPos: true, BloodONeg: true,
}

// IsValidBloodGroup проверяет, является ли строка допустимой группой крови.
func IsValidBloodGroup(g BloodGroup) bool {
	return validBloodGroups[g]
}
