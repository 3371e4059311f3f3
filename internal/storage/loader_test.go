package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func textRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{"Day", "1"}
	}
	return rows
}

func TestLoadBatches(t *testing.T) {
	t.Parallel()

	copyFailed := errors.New("copy failed")
	tests := []struct {
		name      string
		rows      int
		batch     int
		failOn    int // 1-based batch that fails; 0 never
		wantSizes []int
		wantTotal int64
		wantErr   error
	}{
		{name: "exact", rows: 6, batch: 3, wantSizes: []int{3, 3}, wantTotal: 6},
		{name: "remainder", rows: 7, batch: 3, wantSizes: []int{3, 3, 1}, wantTotal: 7},
		{name: "single batch", rows: 2, batch: 1000, wantSizes: []int{2}, wantTotal: 2},
		{name: "empty", rows: 0, batch: 3, wantTotal: 0},
		{name: "second batch fails", rows: 5, batch: 2, failOn: 2, wantSizes: []int{2, 2}, wantTotal: 2, wantErr: copyFailed},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var sizes []int
			copyFn := func(_ context.Context, cols []string, b [][]any) (int64, error) {
				if !reflect.DeepEqual(cols, []string{"breakdown", "value"}) {
					t.Errorf("columns = %v", cols)
				}
				sizes = append(sizes, len(b))
				if len(sizes) == tc.failOn {
					return 0, copyFailed
				}
				return int64(len(b)), nil
			}
			rows := StreamRows(context.Background(), textRows(tc.rows), 2)
			total, err := LoadBatches(context.Background(), []string{"breakdown", "value"}, rows, tc.batch, copyFn)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if total != tc.wantTotal {
				t.Fatalf("total = %d, want %d", total, tc.wantTotal)
			}
			if !reflect.DeepEqual(sizes, tc.wantSizes) {
				t.Fatalf("batch sizes = %v, want %v", sizes, tc.wantSizes)
			}
		})
	}
}

func TestLoadBatches_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan []any)
	done := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, []string{"c"}, in, 10, func(context.Context, []string, [][]any) (int64, error) {
			return 0, nil
		})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("LoadBatches ignored cancellation")
	}
}

func TestStreamRows_PadsAndTrims(t *testing.T) {
	t.Parallel()

	var got [][]any
	for r := range StreamRows(context.Background(), [][]string{{"a"}, {"b", "c", "d"}}, 2) {
		got = append(got, r)
	}
	want := [][]any{{"a", nil}, {"b", "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}
