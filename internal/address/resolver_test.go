package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBIS(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want BISKey
	}{
		{
			name: "unit suffix on house number",
			addr: "952A Greene Ave, Brooklyn, NY 11221",
			want: BISKey{HouseNo: "952A", Street: "Greene Ave", BoroCode: "3"},
		},
		{
			name: "multi word street",
			addr: "10 Main St, Brooklyn, NY 11201",
			want: BISKey{HouseNo: "10", Street: "Main St", BoroCode: "3"},
		},
		{
			name: "two word borough",
			addr: "75 Victory Blvd, Staten Island, NY 10301",
			want: BISKey{HouseNo: "75", Street: "Victory Blvd", BoroCode: "5"},
		},
		{
			name: "lowercase borough",
			addr: "1 Centre St, manhattan, NY 10007",
			want: BISKey{HouseNo: "1", Street: "Centre St", BoroCode: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBIS(tt.addr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBIS_Errors(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"unknown borough", "10 Main St, QUEENSBORO, NY 11201"},
		{"no commas", "10 Main St Brooklyn NY 11201"},
		{"street only", "Main, Brooklyn, NY 11201"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBIS(tt.addr)
			require.Error(t, err)
			assert.True(t, IsParseError(err), "want ParseError, got %T", err)
		})
	}
}

func TestParseFeed(t *testing.T) {
	got, err := ParseFeed("952A Greene Ave, Brooklyn, NY 11221")
	require.NoError(t, err)
	assert.Equal(t, FeedKey{
		Address: "952A GREENE AVE",
		Borough: "BROOKLYN",
		ZIP:     "11221",
	}, got)
}

func TestParseFeed_ZIPIsLastToken(t *testing.T) {
	// ZIP extraction must tolerate extra tokens in the state segment.
	got, err := ParseFeed("10 Main St, Brooklyn,  NY  11201")
	require.NoError(t, err)
	assert.Equal(t, "11201", got.ZIP)
}

func TestParseFeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"missing zip segment", "10 Main St, Brooklyn"},
		{"unknown borough", "10 Main St, QUEENSBORO, NY 11201"},
		{"empty third segment", "10 Main St, Brooklyn, "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFeed(tt.addr)
			require.Error(t, err)
			assert.True(t, IsParseError(err))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"952A Greene Ave, Brooklyn, NY 11221", "952A GREENE AVE, BROOKLYN, NY 11221"},
		{"  10  Main St,  Brooklyn, NY 11201 ", "10 MAIN ST, BROOKLYN, NY 11201"},
		{"10 main st, brooklyn, ny 11201", "10 MAIN ST, BROOKLYN, NY 11201"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestNormalize_CaseInsensitiveKey(t *testing.T) {
	a := Normalize("10 Main St, Brooklyn, NY 11201")
	b := Normalize("10 MAIN ST, BROOKLYN, NY 11201")
	assert.Equal(t, a, b)
}
