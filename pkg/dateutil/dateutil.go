package dateutil

// BirthYear infers a birth year from an age reached during a tax year
func BirthYear(taxYear, age int) int {
	return taxYear - age
}

// FullRetirementAgeMonths returns the Social Security Full Retirement Age in months
func FullRetirementAgeMonths(birthYear int) int {
	switch {
	case birthYear <= 1937:
		return 65 * 12
	case birthYear <= 1942:
		return 65*12 + (birthYear-1937)*2 // 65 and 2 to 10 months
	case birthYear <= 1954:
		return 66 * 12
	case birthYear <= 1959:
		return 66*12 + (birthYear-1954)*2 // 66 and 2 to 10 months
	default: // 1960 and later
		return 67 * 12
	}
}

// FullRetirementAge returns the Full Retirement Age in whole years, rounded down
func FullRetirementAge(birthYear int) int {
	return FullRetirementAgeMonths(birthYear) / 12
}

// SurvivorFullRetirementAgeMonths is the survivor-benefit FRA, which runs two years behind the retirement schedule
func SurvivorFullRetirementAgeMonths(birthYear int) int {
	return FullRetirementAgeMonths(birthYear - 2)
}

// IsMedicareEligible reports whether the age qualifies for Medicare
func IsMedicareEligible(age int) bool {
	return age >= 65
}

