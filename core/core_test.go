package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repopulse/core/timeline"
	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/internal/iocache"
	"github.com/huangsam/repopulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixedNow is the end of the grid in every test.
var fixedNow = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time {
	return &t
}

func testConfig() *contract.Config {
	return &contract.Config{
		InputPath:    "nodes.json",
		Location:     time.UTC,
		Begin:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MonthlyBegin: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:          fixedNow,
		Labels:       contract.DefaultLabels(),
		CacheTTL:     time.Hour,
	}
}

func sampleSet() *schema.RecordSet {
	return &schema.RecordSet{
		PullRequests: []schema.PullRequestRecord{
			{
				ID:      1,
				Opened:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Closed:  ptr(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
				Merged:  ptr(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
				Reviews: []time.Time{time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)},
			},
			{ID: 2, Opened: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
		Issues: []schema.IssueRecord{
			{ID: 10, Opened: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), FeatureA: true, Resolution: true},
		},
		Videos: []schema.VideoReviewRecord{
			{ReviewDate: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRecordStore").Return(nil)
	mgr.On("GetRunStore").Return(nil)
	return mgr
}

func dailyRowOn(t *testing.T, rows []schema.DailyRow, date string) schema.DailyRow {
	t.Helper()
	for _, r := range rows {
		if r.Date == date {
			return r
		}
	}
	require.Failf(t, "row not found", "no row for %s", date)
	return schema.DailyRow{}
}

func TestBuildTables(t *testing.T) {
	result, err := BuildTables(sampleSet(), testConfig())
	require.NoError(t, err)

	// 31 days of January, 29 of February and 4 of March
	require.Len(t, result.Daily, 64)
	assert.Equal(t, "2024-01-01", result.Daily[0].Date)
	assert.Equal(t, "2024-03-04", result.Daily[63].Date)

	assert.InDelta(t, 1.0, dailyRowOn(t, result.Daily, "2024-01-15").Merged, 1e-9)

	feb := dailyRowOn(t, result.Daily, "2024-02-10")
	require.NotNil(t, feb.FeatureA)
	assert.Equal(t, 1, *feb.FeatureA)
	assert.Nil(t, feb.Resolution, "issue tagged A and resolution counts only in A")
	require.NotNil(t, feb.Video)
	assert.Equal(t, 1, *feb.Video)

	assert.Equal(t, []schema.MonthlyRow{
		{Date: "2024-01-16", MergeBar: 1},
		{Date: "2024-02-16", MergeBar: 0},
	}, result.Monthly)
}

func TestBuildTables_InvalidInterval(t *testing.T) {
	set := &schema.RecordSet{
		Issues: []schema.IssueRecord{
			{ID: 5, Opened: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Closed: ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
		},
	}
	_, err := BuildTables(set, testConfig())
	assert.ErrorIs(t, err, timeline.ErrInvalidInterval)
}

func TestBuildTables_NilLocation(t *testing.T) {
	cfg := testConfig()
	cfg.Location = nil
	result, err := BuildTables(&schema.RecordSet{}, cfg)
	require.NoError(t, err)
	assert.Len(t, result.Daily, 64)
}

func TestRunTableCore_NoStores(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	src := &contract.MockRecordSource{}
	src.On("Load", ctx).Return(sampleSet(), nil)
	mgr := noStores()

	result, err := runTableCore(ctx, testConfig(), src, mgr)
	require.NoError(t, err)
	assert.Len(t, result.Daily, 64)

	src.AssertExpectations(t)
	src.AssertNotCalled(t, "Fingerprint", mock.Anything)
	mgr.AssertExpectations(t)
}

func TestRunTableCore_Caching(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	expected, err := BuildTables(sampleSet(), testConfig())
	require.NoError(t, err)

	cached, err := json.Marshal(sampleSet())
	require.NoError(t, err)

	t.Run("miss stores the records", func(t *testing.T) {
		src := &contract.MockRecordSource{}
		src.On("Fingerprint", ctx).Return("fp", nil)
		src.On("Load", ctx).Return(sampleSet(), nil)

		store := &iocache.MockCacheStore{}
		store.On("Get", mock.AnythingOfType("string")).Return(nil, 0, int64(0), errors.New("not found"))
		store.On("Set", mock.AnythingOfType("string"), mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRecordStore").Return(store)
		mgr.On("GetRunStore").Return(nil)

		result, err := runTableCore(ctx, testConfig(), src, mgr)
		require.NoError(t, err)
		assert.Equal(t, expected.Daily, result.Daily)
		src.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("hit skips loading", func(t *testing.T) {
		src := &contract.MockRecordSource{}
		src.On("Fingerprint", ctx).Return("fp", nil)

		store := &iocache.MockCacheStore{}
		store.On("Get", mock.AnythingOfType("string")).Return(cached, currentCacheVersion, time.Now().Unix(), nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRecordStore").Return(store)
		mgr.On("GetRunStore").Return(nil)

		result, err := runTableCore(ctx, testConfig(), src, mgr)
		require.NoError(t, err)
		assert.Equal(t, expected.Daily, result.Daily)
		assert.Equal(t, expected.Monthly, result.Monthly)
		src.AssertNotCalled(t, "Load", mock.Anything)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	misses := []struct {
		name    string
		version int
		age     time.Duration
		data    []byte
	}{
		{"stale entry", currentCacheVersion, 2 * time.Hour, cached},
		{"old version", currentCacheVersion + 1, 0, cached},
		{"corrupt entry", currentCacheVersion, 0, []byte("{")},
	}
	for _, tt := range misses {
		t.Run(tt.name, func(t *testing.T) {
			src := &contract.MockRecordSource{}
			src.On("Fingerprint", ctx).Return("fp", nil)
			src.On("Load", ctx).Return(sampleSet(), nil)

			store := &iocache.MockCacheStore{}
			store.On("Get", mock.AnythingOfType("string")).Return(tt.data, tt.version, time.Now().Add(-tt.age).Unix(), nil)
			store.On("Set", mock.AnythingOfType("string"), mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)

			mgr := &iocache.MockCacheManager{}
			mgr.On("GetRecordStore").Return(store)
			mgr.On("GetRunStore").Return(nil)

			_, err := runTableCore(ctx, testConfig(), src, mgr)
			require.NoError(t, err)
			src.AssertCalled(t, "Load", ctx)
		})
	}

	t.Run("fingerprint failure loads directly", func(t *testing.T) {
		src := &contract.MockRecordSource{}
		src.On("Fingerprint", ctx).Return("", errors.New("stat failed"))
		src.On("Load", ctx).Return(nil, errors.New("failed to read input"))

		store := &iocache.MockCacheStore{}
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRecordStore").Return(store)
		mgr.On("GetRunStore").Return(nil)

		_, err := runTableCore(ctx, testConfig(), src, mgr)
		assert.EqualError(t, err, "failed to read input")
		store.AssertNotCalled(t, "Get", mock.Anything)
	})
}

func TestRunTableCore_RunTracking(t *testing.T) {
	ctx := withSuppressHeader(context.Background())

	t.Run("records rows and ends the run", func(t *testing.T) {
		src := &contract.MockRecordSource{}
		src.On("Load", ctx).Return(sampleSet(), nil)

		runs := &iocache.MockRunStore{}
		runs.On("BeginRun", mock.AnythingOfType("time.Time"), mock.Anything).Return(int64(7), nil)
		runs.On("RecordDailyRows", int64(7), mock.AnythingOfType("[]schema.DailyRow")).Return(nil)
		runs.On("EndRun", int64(7), mock.AnythingOfType("time.Time"), 64).Return(nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRecordStore").Return(nil)
		mgr.On("GetRunStore").Return(runs)

		_, err := runTableCore(ctx, testConfig(), src, mgr)
		require.NoError(t, err)
		runs.AssertExpectations(t)

		params, ok := runs.Calls[0].Arguments.Get(1).(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "nodes.json", params["input"])
		assert.Equal(t, "UTC", params["timezone"])
	})

	t.Run("begin failure skips tracking", func(t *testing.T) {
		src := &contract.MockRecordSource{}
		src.On("Load", ctx).Return(sampleSet(), nil)

		runs := &iocache.MockRunStore{}
		runs.On("BeginRun", mock.AnythingOfType("time.Time"), mock.Anything).Return(int64(0), errors.New("db down"))

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRecordStore").Return(nil)
		mgr.On("GetRunStore").Return(runs)

		_, err := runTableCore(ctx, testConfig(), src, mgr)
		require.NoError(t, err)
		runs.AssertNotCalled(t, "RecordDailyRows", mock.Anything, mock.Anything)
		runs.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("tracking failures are not fatal", func(t *testing.T) {
		src := &contract.MockRecordSource{}
		src.On("Load", ctx).Return(sampleSet(), nil)

		runs := &iocache.MockRunStore{}
		runs.On("BeginRun", mock.AnythingOfType("time.Time"), mock.Anything).Return(int64(3), nil)
		runs.On("RecordDailyRows", int64(3), mock.Anything).Return(errors.New("constraint"))
		runs.On("EndRun", int64(3), mock.AnythingOfType("time.Time"), 64).Return(errors.New("db down"))

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRecordStore").Return(nil)
		mgr.On("GetRunStore").Return(runs)

		result, err := runTableCore(ctx, testConfig(), src, mgr)
		require.NoError(t, err)
		assert.NotNil(t, result)
	})
}

func TestRunTableCore_Errors(t *testing.T) {
	t.Run("cancelled before loading", func(t *testing.T) {
		ctx, cancel := context.WithCancel(withSuppressHeader(context.Background()))
		cancel()
		src := &contract.MockRecordSource{}

		_, err := runTableCore(ctx, testConfig(), src, noStores())
		assert.ErrorIs(t, err, context.Canceled)
		src.AssertNotCalled(t, "Load", mock.Anything)
	})

	t.Run("load failure", func(t *testing.T) {
		ctx := withSuppressHeader(context.Background())
		src := &contract.MockRecordSource{}
		src.On("Load", ctx).Return(nil, errors.New("bad input"))

		_, err := runTableCore(ctx, testConfig(), src, noStores())
		assert.EqualError(t, err, "bad input")
	})

	t.Run("invalid records", func(t *testing.T) {
		ctx := withSuppressHeader(context.Background())
		set := &schema.RecordSet{
			PullRequests: []schema.PullRequestRecord{
				{ID: 9, Opened: fixedNow, Merged: ptr(fixedNow.Add(-time.Hour))},
			},
		}
		src := &contract.MockRecordSource{}
		src.On("Load", ctx).Return(set, nil)

		_, err := runTableCore(ctx, testConfig(), src, noStores())
		assert.ErrorIs(t, err, timeline.ErrInvalidInterval)
	})
}

func TestGenerateCacheKey(t *testing.T) {
	ctx := context.Background()
	keyFor := func(fp string) string {
		src := &contract.MockRecordSource{}
		src.On("Fingerprint", ctx).Return(fp, nil)
		key, err := generateCacheKey(ctx, src)
		require.NoError(t, err)
		return key
	}

	a := keyFor("input:10:1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, keyFor("input:10:1"))
	assert.NotEqual(t, a, keyFor("input:11:1"))
}

func TestRelocate(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	set := sampleSet()
	relocate(set, loc)

	assert.Equal(t, loc, set.PullRequests[0].Opened.Location())
	assert.Equal(t, loc, set.PullRequests[0].Merged.Location())
	assert.Equal(t, loc, set.PullRequests[0].Reviews[0].Location())
	assert.Nil(t, set.PullRequests[1].Closed)
	assert.Equal(t, loc, set.Videos[0].ReviewDate.Location())
	assert.True(t, set.Issues[0].Opened.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLogTableHeader(t *testing.T) {
	cfg := testConfig()
	cfg.InputPath = "/data/nodes.json"

	var buf bytes.Buffer
	logTableHeader(&buf, cfg)
	assert.Equal(t, "Input: nodes.json (Timezone: UTC)\nRange: 2024-01-01T00:00:00Z → 2024-03-05T00:00:00Z\n", buf.String())

	buf.Reset()
	cfg.UseEmojis = true
	logTableHeader(&buf, cfg)
	assert.Contains(t, buf.String(), "🔎 Input: nodes.json")
	assert.Contains(t, buf.String(), "📅 Range: ")
}

func TestSuppressHeader(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	assert.True(t, shouldSuppressHeader(withSuppressHeader(ctx)))
	assert.True(t, shouldSuppressHeader(WithSuppressHeader(ctx)))
	assert.False(t, shouldSuppressHeader(context.WithValue(ctx, suppressHeaderKey, "yes")))
}

func TestExecuteCommands(t *testing.T) {
	ctx := withSuppressHeader(context.Background())
	newCfg := func(t *testing.T) *contract.Config {
		cfg := testConfig()
		cfg.InputPath = filepath.Join("..", "internal", "source", "testdata", "nodes.json")
		cfg.Output = schema.JSONOut
		cfg.Precision = 2
		cfg.OutputFile = filepath.Join(t.TempDir(), "out.json")
		cfg.OutDir = t.TempDir()
		return cfg
	}

	t.Run("daily", func(t *testing.T) {
		cfg := newCfg(t)
		require.NoError(t, ExecuteDaily(ctx, cfg, noStores()))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		var rows []schema.DailyRow
		require.NoError(t, json.Unmarshal(data, &rows))
		assert.Len(t, rows, 64)
	})

	t.Run("monthly", func(t *testing.T) {
		cfg := newCfg(t)
		require.NoError(t, ExecuteMonthly(ctx, cfg, noStores()))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		var rows []schema.MonthlyRow
		require.NoError(t, json.Unmarshal(data, &rows))
		assert.Equal(t, []schema.MonthlyRow{
			{Date: "2024-01-16", MergeBar: 1},
			{Date: "2024-02-16", MergeBar: 0},
		}, rows)
	})

	t.Run("generate", func(t *testing.T) {
		cfg := newCfg(t)
		require.NoError(t, ExecuteGenerate(ctx, cfg, noStores()))
		for _, name := range []string{"daily_table.ts", "monthly_table.ts", "status_chart.html"} {
			_, err := os.Stat(filepath.Join(cfg.OutDir, name))
			assert.NoError(t, err, name)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		cfg := newCfg(t)
		cfg.InputPath = filepath.Join(t.TempDir(), "absent.json")
		assert.Error(t, ExecuteDaily(ctx, cfg, noStores()))
	})
}
