package models

// LetterGrade maps an impact GPA onto the report-card letter scale.
func LetterGrade(gpa float64) string {
	switch {
	case gpa >= 3.9:
		return "A+"
	case gpa >= 3.7:
		return "A"
	case gpa >= 3.3:
		return "A-"
	case gpa >= 3.0:
		return "B+"
	case gpa >= 2.7:
		return "B"
	case gpa >= 2.3:
		return "B-"
	case gpa >= 2.0:
		return "C+"
	case gpa >= 1.7:
		return "C"
	case gpa >= 1.3:
		return "C-"
	case gpa >= 1.0:
		return "D"
	default:
		return "F"
	}
}

// GradeBand collapses a GPA to its letter family: "A", "B", "C" or "D" (D/F).
func GradeBand(gpa float64) string {
	switch {
	case gpa >= 3.3:
		return "A"
	case gpa >= 2.3:
		return "B"
	case gpa >= 1.3:
		return "C"
	default:
		return "D"
	}
}
