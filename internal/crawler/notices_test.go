package crawler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourssu/ssu-time/internal/config"
	"github.com/yourssu/ssu-time/internal/dateparse"
	"github.com/yourssu/ssu-time/internal/model"
)

// fakeRenderer serves canned HTML per URL instead of driving a browser.
type fakeRenderer struct {
	pages map[string]string
}

func (f *fakeRenderer) RenderHTML(_ context.Context, opts RenderOptions) (string, error) {
	html, ok := f.pages[opts.URL]
	if !ok {
		return "", fmt.Errorf("no page for %s", opts.URL)
	}
	return html, nil
}

const noticeListHTML = `
<html><body>
  <a href="/notice/101"><h1>2025학년도 2학기 국가장학금 신청 안내</h1></a>
  <a href="/notice/102"><h1>동아리 박람회 개최</h1></a>
  <a href="/notice/103"><h1>개강 파티 참가자 모집</h1></a>
</body></html>`

const scholarshipNoticeHTML = `
<html><body>
  <article><section><div><section>
    <p>총학생회에서 안내드립니다.</p>
    <p>신청기간: 2025년 11월 3일 ~ 11월 7일</p>
  </section></div></section></article>
</body></html>`

const datelessNoticeHTML = `
<html><body>
  <article><section><div><section>
    <p>자세한 일정은 추후 공지 예정입니다.</p>
  </section></div></section></article>
</body></html>`

func testNotices() (*Notices, *fakeRenderer) {
	cfg := config.NoticesConfig{
		URL:      "https://stu.ssu.ac.kr/notice?category=중앙",
		Keywords: []string{"예비군", "장학", "특식", "개강", "주차"},
		Pages:    1,
	}
	renderer := &fakeRenderer{pages: map[string]string{
		"https://stu.ssu.ac.kr/notice?category=중앙&page=1": noticeListHTML,
		"https://stu.ssu.ac.kr/notice/101":                 scholarshipNoticeHTML,
		"https://stu.ssu.ac.kr/notice/103":                 datelessNoticeHTML,
	}}
	now := time.Date(2025, 10, 1, 6, 0, 0, 0, kst)
	matcher := dateparse.NewMatcher(kst, fixedClock(now))
	return NewNotices(cfg, renderer, matcher, 10*time.Second, 7, fixedClock(now)), renderer
}

func TestNoticesCrawl(t *testing.T) {
	c, _ := testNotices()

	events, misses, err := c.Crawl(context.Background())
	require.NoError(t, err)

	// The 박람회 post has no matching keyword and is never visited; the
	// 개강 post matches but has no date, so it lands in misses.
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, "국가장학금", e.Summary)
	assert.Equal(t, []string{model.CategoryScholarship}, e.Categories)
	assert.Equal(t, "https://stu.ssu.ac.kr/notice/101", e.URL)
	assert.True(t, e.AllDay)
	assert.Equal(t, "2025-11-03", e.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-11-07", e.End.Format("2006-01-02"))

	require.Len(t, misses, 1)
	assert.Equal(t, "개강 파티 참가자 모집", misses[0].Title)
	assert.Equal(t, "no date found", misses[0].Reason)
}

func TestNoticesParseListing(t *testing.T) {
	c, _ := testNotices()

	links, err := c.parseListing(noticeListHTML)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "2025학년도 2학기 국가장학금 신청 안내", links[0].Title)
	assert.Equal(t, "https://stu.ssu.ac.kr/notice/101", links[0].URL)
	assert.Equal(t, "개강 파티 참가자 모집", links[1].Title)
}

func TestNoticesExtractDateFirstParagraphWins(t *testing.T) {
	c, _ := testNotices()

	r, ok := c.extractDate(scholarshipNoticeHTML)
	require.True(t, ok)
	assert.True(t, r.IsRange)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, kst), r.Start.Time)
	assert.Equal(t, time.Date(2025, 11, 7, 0, 0, 0, 0, kst), r.End.Time)
}

func TestNoticesListFailureIsFatal(t *testing.T) {
	c, renderer := testNotices()
	renderer.pages = map[string]string{}

	_, _, err := c.Crawl(context.Background())
	assert.Error(t, err)
}
