package fitness

// gradeRealtime maps a total score onto the six-level ladder used by
// the realtime profile.
func gradeRealtime(total float64) string {
	switch {
	case total >= 0.85:
		return "A"
	case total >= 0.75:
		return "A-"
	case total >= 0.65:
		return "B+"
	case total >= 0.55:
		return "B"
	case total >= 0.45:
		return "B-"
	default:
		return "C"
	}
}

// gradeCalculator maps a total score onto the five-level ladder used
// by the calculator profile.
func gradeCalculator(total float64) string {
	switch {
	case total >= 0.80:
		return "A"
	case total >= 0.65:
		return "B"
	case total >= 0.50:
		return "C"
	case total >= 0.35:
		return "D"
	default:
		return "E"
	}
}
