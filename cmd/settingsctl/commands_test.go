package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersettings/internal/app/settings"
)

func TestParseAssignments(t *testing.T) {
	patch, err := parseAssignments([]string{"name=Ada", "profession=", "dateOfBirth=1815-12-10"})
	require.NoError(t, err)

	assert.Equal(t, settings.Patch{
		Name:        settings.String("Ada"),
		Profession:  settings.String(""),
		DateOfBirth: settings.String("1815-12-10"),
	}, patch)

	for _, args := range [][]string{
		nil,
		{"name"},
		{"=Ada"},
		{"nickname=Ada"},
	} {
		_, err := parseAssignments(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), nil, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "usage: settingsctl")

	t.Setenv("SETTINGS_API_URL", "http://localhost:1")
	err = run(context.Background(), []string{"frobnicate"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "unknown command")
}
