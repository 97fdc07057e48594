package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/types"
)

func layoutCommand(tenant string, prompt string) types.AICommand {
	return types.AICommand{
		CorrelationID: "ignored-for-key-purposes",
		TenantID:      tenant,
		TaskType:      types.TaskLayout,
		PromptText:    prompt,
		Context:       map[string]interface{}{"b": 1, "a": 2},
		Complexity:    types.ComplexitySimple,
		Tier:          types.TierFree,
	}
}

func TestKey_IgnoresCorrelationIDAndMapOrdering(t *testing.T) {
	a := layoutCommand("tenant-1", "build a house")
	a.CorrelationID = "corr-a"
	a.Context = map[string]interface{}{"x": 1, "y": 2}

	b := layoutCommand("tenant-1", "build a house")
	b.CorrelationID = "corr-b"
	b.Context = map[string]interface{}{"y": 2, "x": 1}

	assert.Equal(t, Key(a), Key(b))
}

func TestKey_DiffersOnPromptText(t *testing.T) {
	a := layoutCommand("tenant-1", "build a house")
	b := layoutCommand("tenant-1", "build a shed")
	assert.NotEqual(t, Key(a), Key(b))
}

func TestL1_EvictsOldestOnEntryCap(t *testing.T) {
	l1 := NewL1(2, 0)
	l1.Set("a", []byte("1"), time.Minute)
	l1.Set("b", []byte("2"), time.Minute)
	l1.Set("c", []byte("3"), time.Minute)

	_, ok := l1.Get("a")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = l1.Get("b")
	assert.True(t, ok)
	_, ok = l1.Get("c")
	assert.True(t, ok)
}

func TestL1_ExpiresEntryAfterTTL(t *testing.T) {
	l1 := NewL1(10, 0)
	l1.Set("a", []byte("1"), -time.Second)
	_, ok := l1.Get("a")
	assert.False(t, ok)
}

func TestL1_InvalidateByTagsRemovesMatchingEntries(t *testing.T) {
	l1 := NewL1(10, 0)
	l1.Set("a", []byte("1"), time.Minute, "tenant:1", "task:layout")
	l1.Set("b", []byte("2"), time.Minute, "tenant:2", "task:layout")

	removed := l1.InvalidateByTags("tenant:1")
	assert.Equal(t, 1, removed)

	_, ok := l1.Get("a")
	assert.False(t, ok)
	_, ok = l1.Get("b")
	assert.True(t, ok)
}

func TestCache_StoreThenGetRoundTripsLayoutArtifact(t *testing.T) {
	c := New(NewL1(10, 0), nil, time.Minute, 0)
	cmd := layoutCommand("tenant-1", "build a house")

	result := types.AICommandResult{
		CorrelationID: cmd.CorrelationID,
		Status:        types.StatusSucceeded,
		Artifact: types.LayoutArtifact{
			Rooms: []types.Room{
				{ID: "r1", Name: "Bedroom", Type: "bedroom", AreaM2: 12.5},
			},
			Confidence: 0.9,
		},
		Confidence:   0.9,
		ModelUsed:    "gpt-4.1",
		ProviderUsed: "github_models",
	}

	require.NoError(t, c.Store(context.Background(), cmd, result))

	got, ok, err := c.Get(context.Background(), cmd)
	require.NoError(t, err)
	require.True(t, ok)

	artifact, isLayout := got.Artifact.(types.LayoutArtifact)
	require.True(t, isLayout, "decoded artifact should be a LayoutArtifact, got %T", got.Artifact)
	require.Len(t, artifact.Rooms, 1)
	assert.Equal(t, "Bedroom", artifact.Rooms[0].Name)
	assert.Equal(t, 12.5, artifact.Rooms[0].AreaM2)
	assert.Equal(t, "gpt-4.1", got.ModelUsed)
}

func TestCache_GetMissesOnDifferentCommand(t *testing.T) {
	c := New(NewL1(10, 0), nil, time.Minute, 0)
	cmd := layoutCommand("tenant-1", "build a house")
	other := layoutCommand("tenant-1", "build a shed")

	require.NoError(t, c.Store(context.Background(), cmd, types.AICommandResult{
		Status:   types.StatusSucceeded,
		Artifact: types.LayoutArtifact{Confidence: 0.8},
	}))

	_, ok, err := c.Get(context.Background(), other)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_ComputeIfAbsentCallsComputeOnlyOnMiss(t *testing.T) {
	c := New(NewL1(10, 0), nil, time.Minute, 0)
	cmd := layoutCommand("tenant-1", "build a house")

	var calls int
	compute := func() (types.AICommandResult, error) {
		calls++
		return types.AICommandResult{
			Status:   types.StatusSucceeded,
			Artifact: types.RoomArtifact{Confidence: 0.7},
		}, nil
	}

	first, hit, err := c.ComputeIfAbsent(context.Background(), cmd, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, calls)

	second, hit, err := c.ComputeIfAbsent(context.Background(), cmd, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls, "compute must not run again on a cache hit")
	assert.Equal(t, first.Status, second.Status)
}

func TestCache_InvalidateByTagsClearsTenantEntries(t *testing.T) {
	c := New(NewL1(10, 0), nil, time.Minute, 0)
	cmd := layoutCommand("tenant-1", "build a house")
	require.NoError(t, c.Store(context.Background(), cmd, types.AICommandResult{
		Status:   types.StatusSucceeded,
		Artifact: types.LayoutArtifact{Confidence: 0.8},
	}))

	removed, err := c.InvalidateByTags(context.Background(), "tenant:tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok, err := c.Get(context.Background(), cmd)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnvelope_RoundTripsGenericArtifact(t *testing.T) {
	cmd := layoutCommand("tenant-1", "analyze this")
	cmd.TaskType = types.TaskAnalyze

	raw, err := encodeResult(cmd.TaskType, types.AICommandResult{
		Status:   types.StatusSucceeded,
		Artifact: types.GenericArtifact{Task: types.TaskAnalyze, Data: map[string]interface{}{"score": 0.5}},
	})
	require.NoError(t, err)

	decoded, err := decodeResult(raw)
	require.NoError(t, err)

	artifact, ok := decoded.Artifact.(types.GenericArtifact)
	require.True(t, ok)
	assert.Equal(t, types.TaskAnalyze, artifact.Task)
	assert.Equal(t, 0.5, artifact.Data["score"])
}

func TestEnvelope_RoundTripsNilArtifact(t *testing.T) {
	raw, err := encodeResult(types.TaskLayout, types.AICommandResult{Status: types.StatusFailed})
	require.NoError(t, err)

	decoded, err := decodeResult(raw)
	require.NoError(t, err)
	assert.Nil(t, decoded.Artifact)
	assert.Equal(t, types.StatusFailed, decoded.Status)
}
