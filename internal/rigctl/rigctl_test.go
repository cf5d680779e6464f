package rigctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherMatchesFirstCommand(t *testing.T) {
	var ran []string
	commands := []Command{
		{
			Format:   "ptt $n on",
			ParamMax: 1,
			Run: func(r *Rig, params []string) error {
				ran = append(ran, "on:"+params[0])
				return nil
			},
		},
		{
			Format:   "ptt $n off",
			ParamMax: 1,
			Run: func(r *Rig, params []string) error {
				ran = append(ran, "off:"+params[0])
				return nil
			},
		},
	}

	d := NewDispatcher(nil, commands)

	matched, err := d.Dispatch("ptt 0 on\n")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, []string{"on:0"}, ran)
}

func TestDispatcherReportsNoMatch(t *testing.T) {
	d := NewDispatcher(nil, nil)

	matched, err := d.Dispatch("anything\n")
	require.NoError(t, err)
	assert.False(t, matched)
}
