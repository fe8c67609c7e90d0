package domain

// MaxQuestionCount caps a single quiz request.
const MaxQuestionCount = 65

// ExamDomains is the certification catalog: exam type to its knowledge domains.
var ExamDomains = map[string][]string{
	"Developer-Associate": {
		"Development with AWS Services",
		"Security",
		"Deployment",
		"Troubleshooting and Optimization",
		"Monitoring and Logging",
	},
	"Solutions-Architect-Associate": {
		"Design Resilient Architectures",
		"Design High-Performing Architectures",
		"Design Secure Applications and Architectures",
		"Design Cost-Optimized Architectures",
	},
	"SysOps-Administrator-Associate": {
		"Monitoring and Reporting",
		"High Availability",
		"Deployment and Provisioning",
		"Storage and Data Management",
		"Security and Compliance",
		"Networking",
	},
}

// ValidExamType reports whether the exam type is in the catalog.
func ValidExamType(examType string) bool {
	_, ok := ExamDomains[examType]
	return ok
}

// ValidDomain reports whether the domain belongs to the exam type.
func ValidDomain(examType, domain string) bool {
	for _, d := range ExamDomains[examType] {
		if d == domain {
			return true
		}
	}
	return false
}
