package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourssu/ssu-time/internal/model"
)

func TestSerializeAllDayUsesExclusiveEnd(t *testing.T) {
	e := model.Event{
		UID:        "test-uid@yourssu.com",
		Summary:    "수강신청",
		Categories: []string{model.CategoryStandard},
		AllDay:     true,
		Start:      time.Date(2025, 11, 3, 0, 0, 0, 0, kst),
		End:        time.Date(2025, 11, 5, 0, 0, 0, 0, kst),
		CreatedAt:  time.Date(2025, 10, 1, 6, 0, 0, 0, kst),
	}

	body := Serialize([]model.Event{e})
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20251103")
	// Inclusive Nov 5 is written as exclusive Nov 6 on the wire.
	assert.Contains(t, body, "20251106")
	assert.Contains(t, body, "SUMMARY:수강신청")
	assert.Contains(t, body, "UID:test-uid@yourssu.com")
}

func TestParseRestoresInclusiveEnd(t *testing.T) {
	e := model.Event{
		UID:        "roundtrip@yourssu.com",
		Summary:    "중간고사",
		URL:        "https://example.com/notice/1",
		Categories: []string{model.CategoryStandard},
		AllDay:     true,
		Start:      time.Date(2025, 11, 3, 0, 0, 0, 0, kst),
		End:        time.Date(2025, 11, 5, 0, 0, 0, 0, kst),
		CreatedAt:  time.Date(2025, 10, 1, 6, 0, 0, 0, kst),
	}

	parsed, err := Parse([]byte(Serialize([]model.Event{e})), kst)
	require.NoError(t, err)
	require.Len(t, parsed, 1)

	got := parsed[0]
	assert.Equal(t, e.UID, got.UID)
	assert.Equal(t, e.Summary, got.Summary)
	assert.Equal(t, e.URL, got.URL)
	assert.Equal(t, e.Categories, got.Categories)
	assert.True(t, got.AllDay)
	assert.Equal(t, "2025-11-03", got.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-11-05", got.End.Format("2006-01-02"))
	assert.Equal(t, e.Key(), got.Key(), "identity must survive the wire")
}

func TestParseTimedEventKeepsInstant(t *testing.T) {
	e := model.Event{
		UID:       "timed@yourssu.com",
		Summary:   "장학금 신청 마감",
		AllDay:    false,
		Start:     time.Date(2025, 11, 20, 17, 0, 0, 0, kst),
		End:       time.Date(2025, 11, 20, 18, 0, 0, 0, kst),
		CreatedAt: time.Date(2025, 10, 1, 6, 0, 0, 0, kst),
	}

	parsed, err := Parse([]byte(Serialize([]model.Event{e})), kst)
	require.NoError(t, err)
	require.Len(t, parsed, 1)

	got := parsed[0]
	assert.False(t, got.AllDay)
	assert.True(t, got.Start.Equal(e.Start))
	assert.True(t, got.End.Equal(e.End))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("this is not a calendar"), kst)
	assert.Error(t, err)

	_, err = Parse(nil, kst)
	assert.Error(t, err)
}

func TestParseSkipsEventWithoutUID(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//yourssu//ssu-time//KO",
		"BEGIN:VEVENT",
		"SUMMARY:no uid here",
		"DTSTART;VALUE=DATE:20251103",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:ok@yourssu.com",
		"SUMMARY:valid",
		"DTSTART;VALUE=DATE:20251103",
		"DTEND;VALUE=DATE:20251104",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	parsed, err := Parse([]byte(body), kst)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "ok@yourssu.com", parsed[0].UID)
}
