package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	require := require.New(t)

	for _, tc := range []struct {
		s        string
		expected Version
		valid    bool
	}{
		{"1.0.0", Version{1, 0, 0}, true},
		{"1.21", Version{1, 21, 0}, true},
		{"1.21.5", Version{1, 21, 5}, true},
		{"1", Version{}, false},
		{"1.2.3.4", Version{}, false},
		{"1.x", Version{}, false},
		{"70000.1", Version{}, false},
	} {
		v, err := FromString(tc.s)
		if !tc.valid {
			require.Error(err, "FromString(%s)", tc.s)
			continue
		}
		require.NoError(err, "FromString(%s)", tc.s)
		require.Equal(tc.expected, v)
		require.Equal(tc.expected.String(), v.String())
	}
}

func TestMajorMinor(t *testing.T) {
	v := Version{Major: 1, Minor: 2, Patch: 3}
	require.Equal(t, Version{Major: 1, Minor: 2}, v.MajorMinor())
	require.Equal(t, "1.2.0", v.MajorMinor().String())
}

func TestParseToolchain(t *testing.T) {
	require.Equal(t, Version{1, 21, 0}, parseSemVerStr("1.21"))
	require.Equal(t, Version{1, 22, 0}, parseSemVerStr("1.22-abcdef"))
	require.Equal(t, Version{}, parseSemVerStr("devel"))
}
