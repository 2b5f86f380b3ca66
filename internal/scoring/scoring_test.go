package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
	"github.com/DoyleJ11/wuwa-draft-client/internal/store"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, _, err := catalog.New([]catalog.Item{
		{Name: "Jiyan", Rarity: 5, Limited: true},
		{Name: "Yinlin", Rarity: 5, Limited: true},
		{Name: "Changli", Rarity: 5, Limited: true},
		{Name: "Lingyang", Rarity: 5},
	}, catalog.DefaultPoints)
	require.NoError(t, err)
	return c
}

func TestScore(t *testing.T) {
	cat := testCatalog(t)

	cases := []struct {
		name string
		own  Ownership
		want int
	}{
		{"empty", Ownership{}, 0},
		{"level 3 plus not owned", Ownership{"Jiyan": 3, "Yinlin": NotOwned}, 10},
		{"levels 0 and 6", Ownership{"Jiyan": 0, "Changli": 6}, 19},
		{"out of range ignored", Ownership{"Jiyan": 7, "Yinlin": -4}, 0},
		{"standard item ignored", Ownership{"Lingyang": 6}, 0},
		{"unknown item ignored", Ownership{"Nobody": 2}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(cat, tc.own))
		})
	}
}

func TestNormalizeAndSubmitted(t *testing.T) {
	cat := testCatalog(t)
	got := Normalize(cat, Ownership{"Jiyan": 2, "Yinlin": 9, "Lingyang": 1})
	assert.Equal(t, Ownership{"Jiyan": 2, "Yinlin": NotOwned, "Changli": NotOwned}, got)
	assert.Equal(t, map[string]int{"Jiyan": 2}, Submitted(got))
}

func TestLedger_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cat := testCatalog(t)
	ledger := NewLedger(store.NewMemory(), cat, nil)

	assert.Equal(t, Defaults(cat), ledger.Prefill(ctx), "nothing stored yet")

	submitted := Ownership{"Jiyan": 3, "Yinlin": 0, "Changli": NotOwned}
	require.NoError(t, ledger.Save(ctx, submitted))
	assert.Equal(t, submitted, ledger.Prefill(ctx))

	fresh, err := ledger.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(cat), fresh)
	assert.Equal(t, Defaults(cat), ledger.Prefill(ctx))
}

func TestLedger_CorruptRecordDefaultsSilently(t *testing.T) {
	ctx := context.Background()
	cat := testCatalog(t)
	s := store.NewMemory()
	ledger := NewLedger(s, cat, nil)

	for _, raw := range []string{`not json`, `["Jiyan"]`, `{"Jiyan":"three"}`} {
		require.NoError(t, s.Put(ctx, StorageKey, []byte(raw)))
		assert.Equal(t, Defaults(cat), ledger.Prefill(ctx), raw)
	}

	require.NoError(t, s.Put(ctx, StorageKey, []byte(`{"Jiyan":4,"Yinlin":12,"Ghost":1}`)))
	assert.Equal(t, Ownership{"Jiyan": 4, "Yinlin": NotOwned, "Changli": NotOwned}, ledger.Prefill(ctx))
}
