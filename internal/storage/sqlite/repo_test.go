package sqlite

import (
	"context"
	"strings"
	"testing"

	"domainetl/internal/storage"
)

func newRepo(tb testing.TB) *Repository {
	tb.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: ":memory:"})
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(closeFn)
	return r
}

func mustExec(tb testing.TB, r *Repository, sqlStmt string) {
	tb.Helper()
	if err := r.Exec(context.Background(), sqlStmt); err != nil {
		tb.Fatalf("exec %q: %v", sqlStmt, err)
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestCopyFrom(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE "aa" ("breakdown" TEXT, "value" TEXT)`)

	n, err := r.CopyFrom(ctx, "aa", []string{"breakdown", "value"}, [][]any{
		{"Day", "1"},
		{"YTD", nil},
	})
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}
	if got, err := r.Count(ctx, "aa"); err != nil || got != 2 {
		t.Fatalf("Count = %d, %v", got, err)
	}

	if n, err := r.CopyFrom(ctx, "aa", []string{"breakdown"}, nil); err != nil || n != 0 {
		t.Fatalf("empty CopyFrom = %d, %v", n, err)
	}
}

func TestCopyFrom_RowWidthMismatchRollsBack(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE "aa" ("a" TEXT, "b" TEXT)`)

	_, err := r.CopyFrom(ctx, "aa", []string{"a", "b"}, [][]any{{"1", "2"}, {"only"}})
	if err == nil || !strings.Contains(err.Error(), "row length") {
		t.Fatalf("err = %v", err)
	}
	if got, _ := r.Count(ctx, "aa"); got != 0 {
		t.Fatalf("rows after rollback = %d, want 0", got)
	}
	if _, err := r.CopyFrom(ctx, "aa", nil, [][]any{{"1"}}); err == nil {
		t.Fatalf("expected error for empty columns")
	}
}

func TestExec_Blank(t *testing.T) {
	t.Parallel()

	if err := newRepo(t).Exec(context.Background(), "   "); err != nil {
		t.Fatalf("Exec blank: %v", err)
	}
}

// storage.New routes "sqlite" through init registration; with the real
// constructor this exercises the driver end to end via the dialect.
func TestStorageRegistrationAndDialect(t *testing.T) {
	ctx := context.Background()

	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	d, err := storage.DialectFor("sqlite")
	if err != nil {
		t.Fatalf("DialectFor: %v", err)
	}
	create, err := d.CreateTable("ygtd", []string{"breakdown", "value"})
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	for _, stmt := range []string{d.DropTable("ygtd"), create, d.CreateIndex("ygtd", "ix_ygtd_value", []string{"value"})} {
		if err := repo.Exec(ctx, stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	n, err := repo.CopyFrom(ctx, "ygtd", []string{"breakdown", "value"}, [][]any{{"YTD", "12"}})
	if err != nil || n != 1 {
		t.Fatalf("CopyFrom = %d, %v", n, err)
	}
}

func TestStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "file:x.db"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg.DSN != "file:x.db" {
		t.Fatalf("cfg.DSN = %q", gotCfg.DSN)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not call closeFn")
	}
}
