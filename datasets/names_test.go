package datasets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		stem    string
		want    Name
		key     string
		wantErr bool
	}{
		{stem: "lrim_128_0.6_10k", want: Name{Size: "128", Sigma: "0.6", Suffix: "10k"}, key: "lrim_128_0.6_10k"},
		{stem: "lrim_16_1.0_10k", want: Name{Size: "16", Sigma: "1.0", Suffix: "10k"}, key: "lrim_16_1.0_10k"},
		{stem: "lrim_64_0.5_v2_10k", want: Name{Size: "64", Sigma: "0.5", Suffix: "v2"}, key: "lrim_64_0.5_v2"},
		{stem: "lrim_64_10k", wantErr: true},
		{stem: "ising_64_0.5_10k", wantErr: true},
		{stem: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			got, err := ParseName(tt.stem)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnrecognizedName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.key, got.Key())
		})
	}
}

func TestParseName_SigmaIsKeptAsText(t *testing.T) {
	got, err := ParseName("lrim_32_0.60_10k")
	require.NoError(t, err)
	assert.Equal(t, "0.60", got.Sigma)
}

func TestName_GridSize(t *testing.T) {
	n := Name{Size: "32"}
	size, err := n.GridSize()
	require.NoError(t, err)
	assert.Equal(t, 32, size)

	_, err = Name{Size: "big"}.GridSize()
	assert.Error(t, err)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "lrim_128_0.6_10k", Stem("data/raw/lrim_128_0.6_10k.pt"))
	assert.Equal(t, "lrim_128_0.6_10k", Stem("lrim_128_0.6_10k.npz"))
}
