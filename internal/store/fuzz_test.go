package store_test

import (
	"math/rand/v2"
	"testing"

	"github.com/calvinalkan/flatdb/internal/testutil"
)

func FuzzStore_Matches_Model_When_Random_Ops_Applied(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("flatdb"))
	f.Add(randomBytes(1, 600))

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg := testutil.DefaultRunConfig()
		if testing.Short() {
			cfg.MaxOps = 50
		}

		testutil.RunStore(t, openStore(t, nil), data, cfg)
	})
}

func Test_Store_Matches_Model_When_Seeded(t *testing.T) {
	t.Parallel()

	for seed := range uint64(8) {
		data := randomBytes(seed, 1500)

		t.Run("", func(t *testing.T) {
			t.Parallel()

			testutil.RunStore(t, openStore(t, nil), data, testutil.DefaultRunConfig())
		})
	}
}

func randomBytes(seed uint64, n int) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]byte, n)
	for i := range out {
		out[i] = byte(rng.Uint32())
	}

	return out
}
