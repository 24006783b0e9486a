package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/protocol"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/swarm"
)

func TestRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"generations": 12,
		"state": [{"label": "A", "x": 0, "faulty": true}, {"label": "B", "x": 20, "faulty": false}]
	}`), 0o644))

	sc, err := loadScenario(path)
	require.NoError(t, err)

	var out bytes.Buffer
	cfg := swarm.DefaultConfig()
	cfg.BatchSize = 5
	require.NoError(t, runScenario(context.Background(), cfg, sc, &out, golog.DiscardLogger))

	scanner := bufio.NewScanner(&out)
	iter := 0
	for scanner.Scan() {
		iter++
		m, err := protocol.DecodeResponse(scanner.Bytes())
		require.NoError(t, err)
		g := m.(*protocol.GenerateResponse).Response
		assert.Equal(t, iter, g.Iter)
		a, _ := g.Find("A")
		assert.Equal(t, 0.0, a.X, "faulty robot moved")
	}
	assert.Equal(t, 12, iter)
}

func TestRunScenario_Plane(t *testing.T) {
	sc := &Scenario{
		Dimension:   2,
		Mode:        "center",
		Range:       10,
		Generations: 1,
		State:       []swarm.Robot{{Label: "a"}, {Label: "b", X: 4}, {Label: "c", Y: 3}},
	}
	var out bytes.Buffer
	require.NoError(t, runScenario(context.Background(), swarm.DefaultConfig(), sc, &out, golog.DiscardLogger))

	m, err := protocol.DecodeResponse(bytes.TrimSpace(out.Bytes()))
	require.NoError(t, err)
	for _, r := range m.(*protocol.GenerateResponse).Response.Robots {
		assert.InDelta(t, 2, r.X, 1e-9)
		assert.InDelta(t, 1.5, r.Y, 1e-9)
	}
}

func TestRunScenario_Invalid(t *testing.T) {
	sc := &Scenario{Generations: 3, State: []swarm.Robot{{Label: "A"}, {Label: "A", X: 2}}}
	err := runScenario(context.Background(), swarm.DefaultConfig(), sc, &bytes.Buffer{}, golog.DiscardLogger)
	assert.Error(t, err)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := loadScenario(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
