package event

import (
	"regexp"
	"strings"
)

var noticeNoiseWords = []string{
	"안내", "공개", "접수", "신청", "모집", "선발", "관련", "알림", "참가자",
}

var (
	semesterDashRe  = regexp.MustCompile(`\d{4}-\d학기`)
	academicYearRe  = regexp.MustCompile(`\d{4}학년도\s*`)
	ordinalTermRe   = regexp.MustCompile(`제?\d+학기\s*`)
	plainYearDoRe   = regexp.MustCompile(`\d{4}년도?\s*`)
	bareYearRe      = regexp.MustCompile(`\d{4}\s+`)
	bracketsRe      = regexp.MustCompile(`[\[\]\(\)\{\}【】]`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	semesterLabelRe = regexp.MustCompile(`\d{4}학년도\s*(?:\d\s*학기|(?:겨울|여름)\s*학기)?`)
)

// CleanNoticeTitle strips boilerplate from a notice title: procedural
// words (안내, 접수, ...), semester/year markers, and bracket
// characters, collapsing the leftover whitespace.
func CleanNoticeTitle(title string) string {
	cleaned := title
	for _, w := range noticeNoiseWords {
		cleaned = strings.ReplaceAll(cleaned, w, "")
	}

	cleaned = semesterDashRe.ReplaceAllString(cleaned, "")
	cleaned = academicYearRe.ReplaceAllString(cleaned, "")
	cleaned = ordinalTermRe.ReplaceAllString(cleaned, "")
	cleaned = plainYearDoRe.ReplaceAllString(cleaned, "")
	cleaned = bareYearRe.ReplaceAllString(cleaned, "")
	cleaned = bracketsRe.ReplaceAllString(cleaned, "")
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}

// SemesterLabel extracts the academic-term marker ("2025학년도 1학기",
// "2025학년도 여름 학기", or a bare "2025학년도") from a title, for use
// as an event description once the title itself is stripped of it.
func SemesterLabel(title string) string {
	return semesterLabelRe.FindString(title)
}

// StripSemesterLabel removes the academic-term markers matched by
// SemesterLabel from the title.
func StripSemesterLabel(title string) string {
	out := semesterLabelRe.ReplaceAllString(title, "")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(out, " "))
}

var (
	leadStarsRe    = regexp.MustCompile(`^★+\s*`)
	repostRe       = regexp.MustCompile(`^\(재공지\)\s*`)
	extensionRe    = regexp.MustCompile(`\(기한\s*연장\)`)
	foundationRe   = regexp.MustCompile(`([가-힣A-Za-z0-9·]+(?:장학재단|장학회|재단))`)
	scholarNameRe  = regexp.MustCompile(`㈜?\s*([가-힣A-Za-z0-9·]+)\s*(?:장학생|장학금)`)
	termNoiseRe    = regexp.MustCompile(`\d{4}학년도?\s*\d?학기?`)
	noticeSuffixRe = regexp.MustCompile(`(선발\s*공고|추천\s*공고|모집\s*공고|공고)`)
	anyNameRe      = regexp.MustCompile(`㈜?\s*([가-힣A-Za-z0-9·]{2,})`)
)

// ExtractFoundationName pulls the scholarship foundation's name out of
// a raw post title, trying the explicit 재단/장학회 forms first, then
// the name adjoining 장학생/장학금, then the first plausible token once
// term and 공고 noise is removed.
func ExtractFoundationName(rawTitle string) string {
	title := strings.TrimSpace(rawTitle)
	title = leadStarsRe.ReplaceAllString(title, "")
	title = repostRe.ReplaceAllString(title, "")
	title = extensionRe.ReplaceAllString(title, "")
	title = multiSpaceRe.ReplaceAllString(title, " ")

	if m := foundationRe.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	if m := scholarNameRe.FindStringSubmatch(title); m != nil {
		return m[1]
	}

	t2 := termNoiseRe.ReplaceAllString(title, "")
	t2 = noticeSuffixRe.ReplaceAllString(t2, "")
	t2 = strings.TrimSpace(t2)
	if m := anyNameRe.FindStringSubmatch(t2); m != nil {
		return m[1]
	}

	if fields := strings.Fields(title); len(fields) > 0 {
		return fields[0]
	}
	return title
}
