package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourssu/ssu-time/internal/config"
	"github.com/yourssu/ssu-time/internal/dateparse"
	"github.com/yourssu/ssu-time/internal/model"
)

func scholarshipServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `
		<html><body>
		  <a class="text-decoration-none d-block text-truncate" href="/post/1">★ 아산장학재단 장학생 선발 공고</a>
		  <a class="text-decoration-none d-block text-truncate" href="/post/2">동계 근로 안내</a>
		</body></html>`)
	})
	mux.HandleFunc("/post/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `
		<html><body>
		  <h1>★ 아산장학재단 장학생 선발 공고</h1>
		  <div id="contents">
		    <p>가. 접수기간 : 2025.11.03(월) ~ 2025.11.20(목)</p>
		    <p>나. 기타 문의는 장학팀으로 연락 바랍니다.</p>
		  </div>
		</body></html>`)
	})
	mux.HandleFunc("/post/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `
		<html><body>
		  <h1>동계 근로 안내</h1>
		  <div id="contents"><p>일정은 추후 공지됩니다.</p></div>
		</body></html>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testScholarship(listURL string) *Scholarship {
	cfg := config.ScholarshipConfig{
		ListURL:          listURL,
		LinkSelectors:    []string{"a.text-decoration-none.d-block.text-truncate"},
		ContentSelectors: []string{"#contents", "div.bg-white"},
		LabelKeywords:    []string{"접수기한", "접수기간", "제출기간", "제출기한", "서류심사"},
		MaxConcurrency:   10,
	}
	now := time.Date(2025, 10, 1, 6, 0, 0, 0, kst)
	matcher := dateparse.NewMatcher(kst, fixedClock(now))
	fetcher := NewFetcher(10 * time.Second)
	return NewScholarship(cfg, fetcher, matcher, kst, fixedClock(now), 3, 7)
}

func TestScholarshipCrawl(t *testing.T) {
	srv := scholarshipServer(t)
	c := testScholarship(srv.URL + "/?category=장학")

	events, misses, err := c.Crawl(context.Background())
	require.NoError(t, err)

	// An 18-day application period splits into start/deadline markers.
	require.Len(t, events, 2)
	assert.Equal(t, "아산장학재단 장학금 신청 시작", events[0].Summary)
	assert.True(t, events[0].AllDay)
	assert.Equal(t, "2025-11-03", events[0].Start.Format("2006-01-02"))
	assert.Equal(t, "아산장학재단 장학금 신청 마감", events[1].Summary)
	assert.Equal(t, "2025-11-20", events[1].Start.Format("2006-01-02"))

	for _, e := range events {
		assert.Equal(t, []string{model.CategoryScholarship}, e.Categories)
		assert.Contains(t, e.URL, "/post/1")
	}

	require.Len(t, misses, 1)
	assert.Equal(t, "동계 근로 안내", misses[0].Title)
	assert.Equal(t, "no schedule found", misses[0].Reason)
}

func TestScholarshipCrawlWordConnective(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `
		<html><body>
		  <a class="text-decoration-none d-block text-truncate" href="/post/1">★ 아산장학재단 장학생 선발 공고</a>
		</body></html>`)
	})
	mux.HandleFunc("/post/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `
		<html><body>
		  <h1>★ 아산장학재단 장학생 선발 공고</h1>
		  <div id="contents">
		    <p>2025년 11월 3일(월) 부터 2025년 11월 20일(목) 까지 접수기간</p>
		  </div>
		</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := testScholarship(srv.URL + "/?category=장학")
	events, misses, err := c.Crawl(context.Background())
	require.NoError(t, err)
	assert.Empty(t, misses)

	// The 부터/까지 phrasing resolves like the tilde form.
	require.Len(t, events, 2)
	assert.Equal(t, "아산장학재단 장학금 신청 시작", events[0].Summary)
	assert.Equal(t, "2025-11-03", events[0].Start.Format("2006-01-02"))
	assert.Equal(t, "아산장학재단 장학금 신청 마감", events[1].Summary)
	assert.Equal(t, "2025-11-20", events[1].Start.Format("2006-01-02"))
	for _, e := range events {
		assert.True(t, e.AllDay)
		assert.Equal(t, []string{model.CategoryScholarship}, e.Categories)
	}
}

func TestScholarshipListFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := testScholarship(srv.URL)
	_, _, err := c.Crawl(context.Background())
	assert.Error(t, err)
}

func TestScholarshipParseDetail(t *testing.T) {
	c := testScholarship("https://example.com/")

	html := `
	<html><body>
	  <h1>★ 아산장학재단 장학생 선발 공고</h1>
	  <div id="contents">
	    <p>가. 접수기간 : 2025.11.03 ~ 2025.11.07</p>
	    <p>나. 서류심사 : 2025.12월</p>
	  </div>
	</body></html>`

	title, lines := c.parseDetail(html)
	assert.Equal(t, "★ 아산장학재단 장학생 선발 공고", title)
	require.Len(t, lines, 2)
	assert.Equal(t, "접수기간", lines[0].Label)
	assert.Equal(t, "서류심사", lines[1].Label)
}
