package crawler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourssu/ssu-time/internal/dateparse"
)

var kst = time.FixedZone("KST", 9*60*60)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func octMatcher() *dateparse.Matcher {
	return dateparse.NewMatcher(kst, fixedClock(time.Date(2025, 10, 1, 6, 0, 0, 0, kst)))
}

func TestCollectDetailLinks(t *testing.T) {
	html := `
	<html><body>
	  <a class="text-decoration-none d-block text-truncate" href="/공지사항/view/1">★ 아산장학재단 장학생 선발 공고</a>
	  <a class="text-decoration-none d-block text-truncate" href="/공지사항/view/2">★ 미래 장학금 모집</a>
	  <a class="text-decoration-none d-block text-truncate" href="/공지사항/view/1">중복 링크</a>
	  <a class="other" href="/elsewhere">무관한 링크</a>
	</body></html>`

	links, err := CollectDetailLinks(html, "https://scatch.ssu.ac.kr/공지사항/?category=장학", []string{
		"a.text-decoration-none.d-block.text-truncate",
	})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "★ 아산장학재단 장학생 선발 공고", links[0].Title)
	assert.Contains(t, links[0].URL, "scatch.ssu.ac.kr")
	assert.Contains(t, links[0].URL, "/view/1")
	assert.Contains(t, links[1].URL, "/view/2")
}

func TestCollectDetailLinksFallsThroughSelectors(t *testing.T) {
	html := `<html><body><a class="fallback" href="/post/9">글</a></body></html>`

	links, err := CollectDetailLinks(html, "https://example.com/", []string{
		"a.primary-missing",
		"a.fallback",
	})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com/post/9", links[0].URL)
}

func TestContentTextPicksFirstSelector(t *testing.T) {
	html := `
	<html><body>
	  <div id="contents">
	    <p>가. 접수기간 : 2025.11.03 ~ 2025.11.20</p>
	    <p>나. 서류심사 : 2025.12월</p>
	  </div>
	  <div class="bg-white"><p>뒤쪽 내용</p></div>
	</body></html>`

	text, ok := ContentText(html, []string{"#contents", "div.bg-white"})
	require.True(t, ok)
	assert.Contains(t, text, "접수기간")
	assert.Contains(t, text, "서류심사")
	assert.NotContains(t, text, "뒤쪽 내용")
}

func TestExtractScheduleLines(t *testing.T) {
	text := "장학생 선발 안내\n" +
		"가. 접수기간 : 2025.11.03(월) ~ 2025.11.20(목)\n" +
		"나. 서류심사 : 2025.12월\n" +
		"다. 면접 안내는 추후 공지\n" +
		"문의: 02-820-0000\n"

	keywords := []string{"접수기한", "접수기간", "제출기간", "제출기한", "서류심사"}
	lines := ExtractScheduleLines(text, keywords, octMatcher())

	require.Len(t, lines, 2)

	assert.Equal(t, "접수기간", lines[0].Label)
	require.Len(t, lines[0].Dates, 2)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, kst), lines[0].Dates[0].Time)
	assert.Equal(t, time.Date(2025, 11, 20, 0, 0, 0, 0, kst), lines[0].Dates[1].Time)

	// A month-only mention expands to the whole month.
	assert.Equal(t, "서류심사", lines[1].Label)
	require.Len(t, lines[1].Dates, 2)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, kst), lines[1].Dates[0].Time)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, kst), lines[1].Dates[1].Time)
}

func TestExtractScheduleLinesTrailingLabel(t *testing.T) {
	text := "2025년 11월 3일(월) 부터 2025년 11월 20일(목) 까지 접수기간\n"

	lines := ExtractScheduleLines(text, []string{"접수기간"}, octMatcher())
	require.Len(t, lines, 1)
	assert.Equal(t, "접수기간", lines[0].Label)
	require.Len(t, lines[0].Dates, 2)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, kst), lines[0].Dates[0].Time)
	assert.Equal(t, time.Date(2025, 11, 20, 0, 0, 0, 0, kst), lines[0].Dates[1].Time)
}

func TestExtractScheduleLinesRequiresKeyword(t *testing.T) {
	text := "행사 일자: 2025.11.03\n접수기간 : 2025.11.05 ~ 2025.11.07\n"

	lines := ExtractScheduleLines(text, []string{"접수기간"}, octMatcher())
	require.Len(t, lines, 1)
	assert.Equal(t, "접수기간", lines[0].Label)
}

func TestExtractScheduleLinesDedupes(t *testing.T) {
	text := "접수기간 : 2025.11.03 ~ 2025.11.20\n접수기간 : 2025.11.03 ~ 2025.11.20\n"

	lines := ExtractScheduleLines(text, []string{"접수기간"}, octMatcher())
	assert.Len(t, lines, 1)
}
