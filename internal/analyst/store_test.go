package analyst

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLatestEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	rec, err := store.Latest()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStoreSaveAndHistory(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := &Record{
			Timestamp:       base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
			SpeechSummary:   fmt.Sprintf("サマリー%d", i),
			MarketSentiment: "neutral",
		}
		require.NoError(t, store.SaveRecord(base.Add(time.Duration(i)*time.Minute), rec))
	}

	latest, err := store.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "サマリー2", latest.SpeechSummary)

	// 从新到旧
	history, err := store.History(2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "サマリー2", history[0].SpeechSummary)
	assert.Equal(t, "サマリー1", history[1].SpeechSummary)

	all, err := store.History(10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStoreNotesCapacity(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		note := LearningNote{
			EvaluationDate: fmt.Sprintf("2026-08-%02d", i+1),
			AccuracyNotes:  fmt.Sprintf("メモ%d", i),
		}
		require.NoError(t, store.AppendNote(note))
	}

	notes, err := store.RecentNotes(0)
	require.NoError(t, err)
	require.Len(t, notes, maxNotes)

	// 最旧的 5 条被淘汰，保留 5〜24
	assert.Equal(t, "メモ5", notes[0].AccuracyNotes)
	assert.Equal(t, "メモ24", notes[len(notes)-1].AccuracyNotes)
}

func TestStoreRecentNotes(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	// 笔记文件不存在
	_, err = store.RecentNotes(5)
	assert.Error(t, err)

	for i := 0; i < 8; i++ {
		require.NoError(t, store.AppendNote(LearningNote{AccuracyNotes: fmt.Sprintf("メモ%d", i)}))
	}

	notes, err := store.RecentNotes(5)
	require.NoError(t, err)
	require.Len(t, notes, 5)
	assert.Equal(t, "メモ3", notes[0].AccuracyNotes)
	assert.Equal(t, "メモ7", notes[4].AccuracyNotes)
}
