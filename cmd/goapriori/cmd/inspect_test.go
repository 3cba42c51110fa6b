package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectCommandStructure(t *testing.T) {
	assert.Equal(t, "inspect", inspectCmd.Use)
	assert.NotNil(t, inspectCmd.RunE)
	assert.NotNil(t, inspectCmd.Flags().Lookup("job"))
}

func TestRunInspect(t *testing.T) {
	saveGlobals(t)
	ws := newWorkspace(t)
	loadWorkspace(t, ws)

	var out bytes.Buffer
	setOutputWriter(&out)
	inspectJob = "school"
	require.NoError(t, runInspect(inspectCmd, nil))

	text := out.String()
	assert.Contains(t, text, "==Dataset school (job school)")
	assert.Contains(t, text, "Total rows:     10")
	assert.Contains(t, text, "Min support:    30.00% (3 rows)")
	assert.Contains(t, text, "| cat1     |        2 | a1,a2  |")

	out.Reset()
	inspectFormat = "json"
	require.NoError(t, runInspect(inspectCmd, nil))
	assert.Contains(t, out.String(), `"total_rows": 10`)
}

func TestRunInspect_UnknownCategory(t *testing.T) {
	saveGlobals(t)
	ws := newWorkspace(t)
	loadWorkspace(t, ws)

	content, err := os.ReadFile(ws.config)
	require.NoError(t, err)
	wide := filepath.Join(ws.dir, "wide.yaml")
	require.NoError(t, os.WriteFile(wide,
		[]byte(strings.Replace(string(content), "[cat1, cat2]", "[cat1, cat3]", 1)), 0644))

	cfgFile = wide
	inspectJob = "school"
	setOutputWriter(&bytes.Buffer{})
	err = runInspect(inspectCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")

	inspectJob = "missing"
	assert.Error(t, runInspect(inspectCmd, nil))
}
