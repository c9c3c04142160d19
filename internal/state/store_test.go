package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndListBuilds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := BuildRecord{
		ID:         "b1",
		StartedAt:  time.Now().Add(-time.Minute).Truncate(time.Millisecond),
		Duration:   120 * time.Millisecond,
		PagesBuilt: 7,
		Outcome:    "success",
	}
	second := BuildRecord{
		ID:           "b2",
		StartedAt:    time.Now().Truncate(time.Millisecond),
		Duration:     80 * time.Millisecond,
		PagesBuilt:   1,
		PagesSkipped: 6,
		Outcome:      "success",
	}
	require.NoError(t, s.RecordBuild(ctx, first))
	require.NoError(t, s.RecordBuild(ctx, second))

	records, err := s.RecentBuilds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "b2", records[0].ID)
	require.Equal(t, 6, records[0].PagesSkipped)
	require.Equal(t, first.Duration, records[1].Duration)
}

func TestRecentBuildsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.RecordBuild(ctx, BuildRecord{
			ID: id, StartedAt: base.Add(time.Duration(i) * time.Second), Outcome: "success",
		}))
	}
	records, err := s.RecentBuilds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "c", records[0].ID)
}

func TestFingerprintRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fp, err := s.Fingerprint(ctx, "math/linear-algebra")
	require.NoError(t, err)
	require.Empty(t, fp)

	require.NoError(t, s.SetFingerprint(ctx, "math/linear-algebra", "aaa"))
	fp, err = s.Fingerprint(ctx, "math/linear-algebra")
	require.NoError(t, err)
	require.Equal(t, "aaa", fp)

	// Upsert overwrites.
	require.NoError(t, s.SetFingerprint(ctx, "math/linear-algebra", "bbb"))
	fp, err = s.Fingerprint(ctx, "math/linear-algebra")
	require.NoError(t, err)
	require.Equal(t, "bbb", fp)
}

func TestSiteSignatureRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sig, err := s.SiteSignature(ctx)
	require.NoError(t, err)
	require.Empty(t, sig)

	require.NoError(t, s.SetSiteSignature(ctx, "sig-1"))
	sig, err = s.SiteSignature(ctx)
	require.NoError(t, err)
	require.Equal(t, "sig-1", sig)

	// Upsert overwrites.
	require.NoError(t, s.SetSiteSignature(ctx, "sig-2"))
	sig, err = s.SiteSignature(ctx)
	require.NoError(t, err)
	require.Equal(t, "sig-2", sig)
}

func TestFingerprintsAndPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetFingerprint(ctx, "a", "1"))
	require.NoError(t, s.SetFingerprint(ctx, "b", "2"))
	require.NoError(t, s.SetFingerprint(ctx, "c", "3"))

	require.NoError(t, s.PruneFingerprints(ctx, map[string]struct{}{"a": {}, "c": {}}))

	all, err := s.Fingerprints(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1", "c": "3"}, all)
}
