package store

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jward/usegraph/internal/edge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// newPostgresStore connects to USEGRAPH_TEST_PG_DSN or skips.
func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("USEGRAPH_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("USEGRAPH_TEST_PG_DSN not set")
	}
	s, err := NewPostgres(dsn)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() {
		_, _ = s.DB().Exec(`DROP TABLE IF EXISTS file_edges; DROP TABLE IF EXISTS files`)
		s.Close()
	})
	return s
}

func pathsOf(files ...string) map[uint64]string {
	m := make(map[uint64]string, len(files))
	for _, f := range files {
		m[edge.Hash(f)] = f
	}
	return m
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"file_edges", "files"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.MigrateContext(context.Background()))
}

func TestOpen_Drivers(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "open.db")
	s, err := Open(DriverSQLite, dbPath)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, DriverSQLite, s.Driver())

	_, err = Open("oracle", "whatever")
	require.ErrorIs(t, err, ErrUnknownDriver)
	assert.Contains(t, err.Error(), `"oracle"`)
}

func TestDialect_Bind(t *testing.T) {
	t.Parallel()
	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	assert.Equal(t, q, sqliteDialect.bind(q))
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", postgresDialect.bind(q))
	assert.Equal(t, "$1::text::numeric(20,0)", postgresDialect.bind(postgresDialect.num("?")))
}

// =============================================================================
// SaveEdges
// =============================================================================

func TestSaveEdges_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	e1 := edge.New("/p/a.cs", "/p/b.cs", edge.Use)
	e2 := edge.New("/p/b.cs", "/p/c.cs", edge.Use)
	require.NoError(t, s.SaveEdges(ctx, []edge.Edge{e2, e1}, pathsOf("/p/a.cs", "/p/b.cs", "/p/c.cs")))

	got, err := s.Edges(ctx)
	require.NoError(t, err)
	want := edge.NewSet()
	want.Insert(e1)
	want.Insert(e2)
	assert.Equal(t, want.Edges(), got)

	files, err := s.Files(ctx)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, File{Fingerprint: edge.Hash("/p/a.cs"), Path: "/p/a.cs"}, files[0])
}

func TestSaveEdges_InsertOnly(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	e := edge.New("/p/a.cs", "/p/b.cs", edge.Use)
	paths := pathsOf("/p/a.cs", "/p/b.cs")
	require.NoError(t, s.SaveEdges(ctx, []edge.Edge{e}, paths))
	require.NoError(t, s.SaveEdges(ctx, []edge.Edge{e, e}, paths))

	// A conflicting registry entry does not overwrite the first one.
	require.NoError(t, s.SaveEdges(ctx, nil, map[uint64]string{edge.Hash("/p/a.cs"): "/elsewhere"}))

	got, err := s.Edges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []edge.Edge{e}, got)

	p, ok, err := s.Path(ctx, edge.Hash("/p/a.cs"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/p/a.cs", p)
}

func TestSaveEdges_FullUint64Range(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	// Fingerprints above MaxInt64 must survive storage unchanged.
	e := edge.FromFingerprints(math.MaxUint64, 1<<63, edge.Depend)
	require.NoError(t, s.SaveEdges(ctx, []edge.Edge{e}, map[uint64]string{math.MaxUint64: "/max"}))

	got, err := s.EdgesFrom(ctx, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, []edge.Edge{e}, got)

	p, ok, err := s.Path(ctx, math.MaxUint64)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/max", p)
}

func TestSaveEdges_RejectsInconsistentEdge(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	good := edge.New("/p/a.cs", "/p/b.cs", edge.Use)
	bad := good
	bad.ID++
	require.Error(t, s.SaveEdges(ctx, []edge.Edge{good, bad}, pathsOf("/p/a.cs")))

	// The transaction rolled back as a whole.
	got, err := s.Edges(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	_, ok, err := s.Path(ctx, edge.Hash("/p/a.cs"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveEdges_EmptyIsNoop(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.SaveEdges(context.Background(), nil, nil))
}

func TestSaveEdges_CancelledContext(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SaveEdges(ctx, []edge.Edge{edge.New("/a", "/b", edge.Use)}, nil)
	require.Error(t, err)
}

// =============================================================================
// Queries
// =============================================================================

func TestEdgesFromAndTo(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	ab := edge.New("/a", "/b", edge.Use)
	ac := edge.New("/a", "/c", edge.Use)
	cb := edge.New("/c", "/b", edge.Use)
	require.NoError(t, s.SaveEdges(ctx, []edge.Edge{ab, ac, cb}, nil))

	from, err := s.EdgesFrom(ctx, edge.Hash("/a"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []edge.Edge{ab, ac}, from)

	to, err := s.EdgesTo(ctx, edge.Hash("/b"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []edge.Edge{ab, cb}, to)

	none, err := s.EdgesTo(ctx, edge.Hash("/a"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPath_Unknown(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, ok, err := s.Path(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, p)
}

func TestPostgres_RoundTrip(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	e := edge.FromFingerprints(math.MaxUint64, 7, edge.Use)
	require.NoError(t, s.SaveEdges(ctx, []edge.Edge{e, e}, map[uint64]string{math.MaxUint64: "/max"}))

	got, err := s.EdgesFrom(ctx, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, []edge.Edge{e}, got)
	p, ok, err := s.Path(ctx, math.MaxUint64)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/max", p)
}

// =============================================================================
// MemoryStore
// =============================================================================

func TestMemoryStore_MatchesStoreSemantics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemoryStore()

	ab := edge.New("/a", "/b", edge.Use)
	cb := edge.New("/c", "/b", edge.Use)
	require.NoError(t, m.SaveEdges(ctx, []edge.Edge{ab, cb, ab}, pathsOf("/a", "/b")))
	require.NoError(t, m.SaveEdges(ctx, nil, map[uint64]string{edge.Hash("/a"): "/other"}))
	assert.Equal(t, 2, m.Len())

	to, err := m.EdgesTo(ctx, edge.Hash("/b"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []edge.Edge{ab, cb}, to)

	from, err := m.EdgesFrom(ctx, edge.Hash("/c"))
	require.NoError(t, err)
	assert.Equal(t, []edge.Edge{cb}, from)

	p, ok, err := m.Path(ctx, edge.Hash("/a"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/a", p)

	bad := ab
	bad.Kind = edge.Provide
	require.Error(t, m.SaveEdges(ctx, []edge.Edge{bad}, nil))
}
