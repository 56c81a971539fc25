package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords_ValueNilIsEmptyArray(t *testing.T) {
	var k Keywords
	v, err := k.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestKeywords_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want Keywords
	}{
		{name: "bytes", src: []byte(`["go","systems"]`), want: Keywords{"go", "systems"}},
		{name: "string", src: `["a"]`, want: Keywords{"a"}},
		{name: "null value", src: nil, want: Keywords{}},
		{name: "json null", src: []byte(`null`), want: Keywords{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var k Keywords
			require.NoError(t, k.Scan(tt.src))
			assert.Equal(t, tt.want, k)
		})
	}
}

func TestKeywords_ScanRejectsUnknownType(t *testing.T) {
	var k Keywords
	assert.Error(t, k.Scan(42))
}

func TestLink_JSONRendersEmptyKeywords(t *testing.T) {
	b, err := json.Marshal(Link{ID: "l1"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"keywords":[]`)
}

func TestSession_Active(t *testing.T) {
	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: expires}

	assert.True(t, s.Active(expires.Add(-time.Nanosecond)))
	assert.False(t, s.Active(expires))
	assert.False(t, s.Active(expires.Add(time.Second)))
}
