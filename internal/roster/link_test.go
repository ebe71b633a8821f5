package roster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/railops/railops/internal/roster"
)

func TestParseLink(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		annotation string
		want       roster.Link
	}{
		{
			name: "direct",
			code: "T42",
			want: roster.Link{Kind: roster.LinkDirect, TripCode: "T42"},
		},
		{
			name:       "direct ignores annotation",
			code:       " 1201 ",
			annotation: "9999-PC-RB",
			want:       roster.Link{Kind: roster.LinkDirect, TripCode: "1201"},
		},
		{
			name:       "proxy with both overrides",
			code:       "Viatger",
			annotation: "T42-PC-RB",
			want:       roster.Link{Kind: roster.LinkProxy, TripCode: "T42", OriginOverride: "PC", DestinationOverride: "RB"},
		},
		{
			name:       "proxy marker is case insensitive",
			code:       "VIATGER",
			annotation: "T42-PC",
			want:       roster.Link{Kind: roster.LinkProxy, TripCode: "T42", OriginOverride: "PC"},
		},
		{
			name:       "proxy without overrides",
			code:       "viatger",
			annotation: "T42",
			want:       roster.Link{Kind: roster.LinkProxy, TripCode: "T42"},
		},
		{
			name:       "proxy with empty origin field",
			code:       "Viatger",
			annotation: "T42--RB",
			want:       roster.Link{Kind: roster.LinkProxy, TripCode: "T42", DestinationOverride: "RB"},
		},
		{
			name: "proxy without annotation",
			code: "Viatger",
			want: roster.Link{Kind: roster.LinkProxy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roster.ParseLink(tt.code, tt.annotation))
		})
	}
}

func TestTripReference_Target(t *testing.T) {
	parsed := roster.NewTripReference("Viatger", "", "T42-PC-RB")
	assert.Equal(t, roster.LinkProxy, parsed.Link.Kind)
	assert.Equal(t, parsed.Link, parsed.Target())

	literal := roster.TripReference{Code: "Viatger", Annotation: "T42-PC-RB"}
	assert.Equal(t, parsed.Link, literal.Target())
}

func TestLinkKind_String(t *testing.T) {
	assert.Equal(t, "direct", roster.LinkDirect.String())
	assert.Equal(t, "proxy", roster.LinkProxy.String())
	assert.Equal(t, "unknown", roster.LinkKind(0).String())
}
