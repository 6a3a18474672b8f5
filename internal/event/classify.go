package event

import (
	"strings"

	"github.com/yourssu/ssu-time/internal/model"
)

// CategoryFromTitle assigns the coarse category inferred from a notice
// title. STANDARD is never inferred here: it is the academic calendar
// source's fixed category.
func CategoryFromTitle(title string) string {
	if strings.Contains(title, "장학") {
		return model.CategoryScholarship
	}
	return model.CategoryEvent
}

// ContainsKeyword reports whether the title mentions any of the
// configured filter keywords.
func ContainsKeyword(title string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}
