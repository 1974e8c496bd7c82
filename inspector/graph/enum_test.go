package graph_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/shimgen/inspector/graph"
	"gopkg.in/yaml.v3"
)

func TestConstantTable_Put(t *testing.T) {
	table := graph.NewConstantTable()
	table.Put("B", 1)
	table.Put("A", 2)
	table.Put("B", 3)

	assert.Equal(t, 2, table.Len())
	assert.EqualValues(t, []string{"B", "A"}, table.Keys())
	value, ok := table.Get("B")
	assert.True(t, ok)
	assert.EqualValues(t, 3, value)
	_, ok = table.Get("C")
	assert.False(t, ok)

	var empty *graph.ConstantTable
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Keys())
}

func TestConstantTable_Merge(t *testing.T) {
	core := graph.NewConstantTable()
	core.Put("KEY_A", 65)
	core.Put("MAX_LIGHTS", 1)
	literals := graph.NewConstantTable()
	literals.Put("MAX_LIGHTS", 4)
	literals.Put("RAYGUI_MAX_CONTROLS", 16)

	core.Merge(literals)
	assert.EqualValues(t, []graph.Constant{
		{Name: "KEY_A", Value: 65},
		{Name: "MAX_LIGHTS", Value: 4},
		{Name: "RAYGUI_MAX_CONTROLS", Value: 16},
	}, core.Constants())
}

func TestConstantTable_Marshal(t *testing.T) {
	table := graph.NewConstantTable()
	table.Put("Z", -1)
	table.Put("A", 0x40)

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t, `{"Z":-1,"A":64}`, string(data))

	data, err = yaml.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t, "Z: -1\nA: 64\n", string(data))

	decoded := graph.NewConstantTable()
	require.NoError(t, yaml.Unmarshal(data, decoded))
	assert.EqualValues(t, table.Constants(), decoded.Constants())

	assert.Error(t, yaml.Unmarshal([]byte("- a\n- b\n"), decoded))
	assert.Error(t, yaml.Unmarshal([]byte("A: text\n"), decoded))
}
