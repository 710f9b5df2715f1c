package entity

import "strings"

type Department string

const (
	DepartmentHealth         Department = "health"
	DepartmentEducation      Department = "education"
	DepartmentFoodAssistance Department = "food-assistance"
	DepartmentGeneralSupport Department = "general-support"
	DepartmentEmployment     Department = "employment"
)

var departments = []Department{
	DepartmentHealth,
	DepartmentEducation,
	DepartmentFoodAssistance,
	DepartmentGeneralSupport,
	DepartmentEmployment,
}

// legacy spellings still sent by older clients and present in old records
var departmentAliases = map[string]Department{
	"food assistance": DepartmentFoodAssistance,
	"general support": DepartmentGeneralSupport,
	"employement":     DepartmentEmployment,
}

func ParseDepartment(s string) (Department, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if d, ok := departmentAliases[normalized]; ok {
		return d, true
	}
	for _, d := range departments {
		if string(d) == normalized {
			return d, true
		}
	}
	return "", false
}

func (d Department) Valid() bool {
	_, ok := ParseDepartment(string(d))
	return ok
}
