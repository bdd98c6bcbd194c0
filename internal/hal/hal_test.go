package hal

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	assert.Equal(t, Key7, ParseKey('7'))
	assert.Equal(t, KeyHash, ParseKey('#'))
	assert.Equal(t, KeyStar, ParseKey('*'))
	assert.Equal(t, KeyNone, ParseKey('x'))

	assert.True(t, Key0.IsDigit())
	assert.False(t, KeyHash.IsDigit())
	assert.Equal(t, byte('5'), Key5.ASCII())
	assert.Equal(t, 11, KeyHash.Index())
	assert.Equal(t, -1, KeyNone.Index())
	assert.Equal(t, "none", KeyNone.String())
}

func TestLineKeypad(t *testing.T) {
	kp := NewLineKeypad(strings.NewReader("12a#\nf*f"), nil)
	interrupts, touches := 0, 0
	kp.OnInterrupt(func() { interrupts++ })
	kp.OnTouch(func() { touches++ })

	require.NoError(t, kp.Run(context.Background()))
	assert.Equal(t, 4, interrupts)
	assert.Equal(t, 2, touches)

	var got []Key
	for k := kp.ReadKey(); k != KeyNone; k = kp.ReadKey() {
		got = append(got, k)
	}
	assert.Equal(t, []Key{Key1, Key2, KeyHash, KeyStar}, got)
}
