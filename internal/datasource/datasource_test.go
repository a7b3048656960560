package datasource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

func testHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewRateLimitedHTTPClient(cfg, log)
}

func testClient(baseURL string) *HKJCClient {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewHKJCClient(testHTTPClient(), baseURL, "test-key", time.Minute, true, log)
}

func TestFetchRaceCards(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/racecards", r.URL.Path)
		assert.Equal(t, "2026-03-01", r.URL.Query().Get("date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"id": "r1", "date": "2026-03-01", "venue": "Sha Tin",
				"raceNumber": 4, "distance": 1400, "going": "GOOD",
				"raceClass": "Class 3", "fieldSize": 2,
				"entries": [
					{"id": "c1", "number": 1, "name": "Lucky Star", "draw": 3, "rating": 72, "winOdds": "4.5"},
					{"id": "c2", "number": 2, "name": "Golden Wind", "draw": 8, "rating": 68, "winOdds": "11"}
				]
			}
		]`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	cards, err := client.FetchRaceCards(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, cards, 1)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "Sha Tin", cards[0].Venue)
	assert.Equal(t, 4, cards[0].RaceNumber)
	require.Len(t, cards[0].Entries, 2)
	assert.Equal(t, "Lucky Star", cards[0].Entries[0].Name)
	assert.Equal(t, 8, cards[0].Entries[1].Draw)
}

func TestFetchRaceCardsCached(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := client.FetchRaceCards(context.Background(), date)
	require.NoError(t, err)
	_, err = client.FetchRaceCards(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, 1, hits, "second fetch should come from cache")
}

func TestFetchRaceCardsSkipsBadCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": "bad", "date": "not-a-date", "raceNumber": 1},
			{"id": "ok", "date": "2026-03-01", "venue": "Happy Valley", "raceNumber": 2, "distance": 1200, "going": "GOOD", "entries": []}
		]`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	cards, err := client.FetchRaceCards(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Happy Valley", cards[0].Venue)
}

func TestFetchCompetitorHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/competitors/c1/history", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("depth"))
		_, _ = w.Write([]byte(`[
			{"date": "15/02/2026", "venue": "沙田", "distance": "1400", "going": "好地", "draw": "5", "position": "3", "margin": "頸位", "rating": "70", "winOdds": "6.1"},
			{"date": "18/01/2026", "venue": "跑馬地", "distance": "1200", "going": "好地", "draw": "2", "position": "WV", "margin": "", "rating": "69", "winOdds": ""}
		]`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	records, err := client.FetchCompetitorHistory(context.Background(), "c1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Rows stay raw; normalization happens downstream
	assert.Equal(t, "頸位", records[0].Margin)
	assert.Equal(t, "WV", records[1].Position)
}

func TestFetchDrawStatistics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/statistics/draws", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"date": "2026-03-01", "raceNumber": 4, "distance": 1400, "going": "GOOD",
			"draws": [
				{"draw": 1, "runs": 10, "wins": 2, "top3": 5},
				{"draw": 2, "runs": 10, "wins": 1, "top3": 3}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	key := models.RaceKey{Date: "2026-03-01", RaceNumber: 4, Distance: 1400, Going: "GOOD"}
	stats, err := client.FetchDrawStatistics(context.Background(), key)
	require.NoError(t, err)

	assert.True(t, stats.Key.Equal(key))
	stat, ok := stats.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, 0.2, stat.WinRate)
	assert.Equal(t, 0.5, stat.Top3Rate)
	assert.Equal(t, 20, stat.SampleSize)
}

func TestFetchAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.FetchRaceCards(context.Background(), time.Now())
	require.Error(t, err)

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeAuthenticationFailed, dsErr.Code)
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.FetchCompetitorHistory(context.Background(), "ghost", 10)
	require.Error(t, err)

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeNotFound, dsErr.Code)
}

func TestDisabledSource(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	client := NewHKJCClient(testHTTPClient(), "http://unused", "", time.Minute, false, log)

	_, err := client.FetchRaceCards(context.Background(), time.Now())
	assert.Error(t, err)
	assert.False(t, client.IsEnabled())
}

func TestRetryOnServerError(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 2
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 1000
	log := logrus.New()
	log.SetOutput(io.Discard)
	client := NewHKJCClient(NewRateLimitedHTTPClient(cfg, log), server.URL, "", time.Minute, true, log)

	_, err := client.FetchRaceCards(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestHTTPClientHealthyReportsOpenCircuit(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 1
	cfg.RateLimit = 1000
	cfg.Timeout = time.Second
	log := logrus.New()
	log.SetOutput(io.Discard)
	client := NewRateLimitedHTTPClient(cfg, log)

	require.NoError(t, client.Healthy())

	// Nothing listens on this port, so the single attempt trips the
	// one-failure breaker.
	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:1/racecards", nil)
	require.NoError(t, err)
	_, doErr := client.Do(context.Background(), req)
	require.Error(t, doErr)

	healthErr := client.Healthy()
	require.Error(t, healthErr)
	assert.Contains(t, healthErr.Error(), "circuit breaker open")
}

func TestSourceHealthChecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.NoError(t, testClient(server.URL).Healthy())

	log := logrus.New()
	log.SetOutput(io.Discard)
	disabled := NewHKJCClient(testHTTPClient(), server.URL, "", time.Minute, false, log)
	assert.Error(t, disabled.Healthy())

	dir := t.TempDir()
	assert.NoError(t, NewCSVSource(dir, true).Healthy())
	assert.Error(t, NewCSVSource(filepath.Join(dir, "missing"), true).Healthy())
	assert.Error(t, NewCSVSource(dir, false).Healthy())
}

func TestCustomRetryPolicy(t *testing.T) {
	policy := customRetryPolicy()
	ctx := context.Background()

	retry, _ := policy(ctx, &http.Response{StatusCode: http.StatusTooManyRequests}, nil)
	assert.True(t, retry)

	retry, _ = policy(ctx, &http.Response{StatusCode: http.StatusBadGateway}, nil)
	assert.True(t, retry)

	retry, _ = policy(ctx, &http.Response{StatusCode: http.StatusBadRequest}, nil)
	assert.False(t, retry)

	retry, _ = policy(ctx, &http.Response{StatusCode: http.StatusOK}, nil)
	assert.False(t, retry)
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCSVSourceRaceCards(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "racecards_2026-03-01.csv",
		"race_number,venue,distance,going,race_class,field_size,number,name,draw,rating,jockey,trainer,win_odds\n"+
			"4,Sha Tin,1400,GOOD,Class 3,2,1,Lucky Star,3,72,K Teetan,J Size,4.5\n"+
			"4,Sha Tin,1400,GOOD,Class 3,2,2,Golden Wind,8,68,Z Purton,C Fownes,11\n"+
			"5,Sha Tin,1200,GOOD,Class 4,1,1,Moonlight,1,55,V Ho,D Hayes,7\n")

	source := NewCSVSource(dir, true)
	cards, err := source.FetchRaceCards(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, cards, 2)

	assert.Equal(t, 4, cards[0].RaceNumber)
	require.Len(t, cards[0].Entries, 2)
	assert.Equal(t, "Golden Wind", cards[0].Entries[1].Name)
	assert.Equal(t, 5, cards[1].RaceNumber)
}

func TestCSVSourceHistoryDepth(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "history_c1.csv",
		"date,venue,race_class,distance,going,draw,position,margin,running_path,rating,win_odds\n"+
			"15/02/2026,沙田,Class 3,1400,好地,5,3,頸位,5 4 3,70,6.1\n"+
			"18/01/2026,跑馬地,Class 3,1200,好地,2,1,-,2 2 1,69,3.2\n"+
			"21/12/2025,沙田,Class 4,1400,好地,7,6,3-1/2,8 7 6,65,15\n")

	source := NewCSVSource(dir, true)
	records, err := source.FetchCompetitorHistory(context.Background(), "c1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "15/02/2026", records[0].Date)
	assert.Equal(t, "5 4 3", records[0].RunningPath)
}

func TestCSVSourceDrawStatistics(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "draws_2026-03-01_4.csv",
		"draw,runs,wins,top3\n1,10,2,5\n2,10,1,3\n")

	source := NewCSVSource(dir, true)
	key := models.RaceKey{Date: "2026-03-01", RaceNumber: 4, Distance: 1400, Going: "GOOD"}
	stats, err := source.FetchDrawStatistics(context.Background(), key)
	require.NoError(t, err)

	stat, ok := stats.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, 0.1, stat.WinRate)
	assert.Equal(t, 20, stat.SampleSize)
}

func TestCSVSourceMissingFile(t *testing.T) {
	source := NewCSVSource(t.TempDir(), true)
	_, err := source.FetchCompetitorHistory(context.Background(), "ghost", 10)
	require.Error(t, err)

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeNotFound, dsErr.Code)
}
