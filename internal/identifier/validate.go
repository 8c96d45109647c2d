package identifier

import "regexp"

var (
	businessCodeRe   = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	businessIDRe     = regexp.MustCompile(`^BIZ[A-Z]{3}[0-9]{4}[A-Z0-9]{4}[0-9]{3}$`)
	staffIDRe        = regexp.MustCompile(`^[A-Z]{2}[A-Z]{2}[0-9]{4}$`)
	propertyCodeRe   = regexp.MustCompile(`^[A-Z]{3}[A-Z]{3}[0-9]{3}$`)
	connectionCodeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)
)

func ValidBusinessCode(code string) bool {
	return businessCodeRe.MatchString(code)
}

func ValidBusinessID(id string) bool {
	return businessIDRe.MatchString(id)
}

func ValidStaffID(id string) bool {
	return staffIDRe.MatchString(id)
}

func ValidPropertyCode(code string) bool {
	return propertyCodeRe.MatchString(code)
}

func ValidConnectionCode(code string) bool {
	return connectionCodeRe.MatchString(code)
}
