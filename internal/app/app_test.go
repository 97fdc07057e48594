package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/config"
	"github.com/archbuilder/orchestrator/internal/types"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestNew_BuildsWithDefaultConfigAndNoExternalCredentials(t *testing.T) {
	a := newTestApp(t)
	assert.NotNil(t, a.coordinator)
	assert.NotNil(t, a.workflow)
	assert.NotNil(t, a.retriever)
}

func TestCreateProject_BuildsTemplateForComplexity(t *testing.T) {
	a := newTestApp(t)

	proj := a.CreateProject("tenant-1", types.ComplexityMedium, map[string]interface{}{"description": "a house"})

	assert.Equal(t, types.ProjectCreated, proj.Status)
	assert.Len(t, proj.Steps, 13)

	got, err := a.ProjectStatus(proj.ProjectID)
	require.NoError(t, err)
	assert.Same(t, proj, got)
}

func TestProjectStatus_UnknownProjectReturnsNotFoundError(t *testing.T) {
	a := newTestApp(t)

	_, err := a.ProjectStatus("does-not-exist")
	require.Error(t, err)
}

func TestExecuteProject_UnknownProjectReturnsNotFoundError(t *testing.T) {
	a := newTestApp(t)

	_, err := a.ExecuteProject(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestRetryProjectStep_UnknownProjectReturnsNotFoundError(t *testing.T) {
	a := newTestApp(t)

	_, err := a.RetryProjectStep(context.Background(), "does-not-exist", "step-1")
	require.Error(t, err)
}

func TestGetCommandResult_MissingCorrelationIDReturnsFalse(t *testing.T) {
	a := newTestApp(t)

	_, ok := a.GetCommandResult("cmd_never_submitted")
	assert.False(t, ok)
}
