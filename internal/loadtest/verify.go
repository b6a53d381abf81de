package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

// leaderboard fetches the top n entries.
func leaderboard(ctx context.Context, c *client, n int) ([]Entry, error) {
	var out []Entry
	if _, err := c.do(ctx, http.MethodGet, "/api/leaderboard?limit="+strconv.Itoa(n), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkOrder reports the first place where the leaderboard is not ranked by
// descending score with dense ranks: ties share a rank, the next score takes
// the following one.
func checkOrder(entries []Entry) error {
	for i, e := range entries {
		want := 1
		if i > 0 {
			prev := entries[i-1]
			if e.Score > prev.Score {
				return fmt.Errorf("%w: entry %d (%s) outscores entry %d", ErrInconsistent, i, e.ProfileID, i-1)
			}
			want = prev.Rank
			if e.Score < prev.Score {
				want++
			}
		}
		if e.Rank != want {
			return fmt.Errorf("%w: entry %d (%s) has rank %d, want %d", ErrInconsistent, i, e.ProfileID, e.Rank, want)
		}
	}
	return nil
}

// checkRanks looks every entry up by id concurrently and compares the single
// rank lookup with its leaderboard row.
func checkRanks(ctx context.Context, c *client, entries []Entry, workers int) (int, error) {
	var (
		mu      sync.Mutex
		checked int
		first   error
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, max(1, workers))
	for _, want := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()

			var got Entry
			_, err := c.do(ctx, http.MethodGet, "/api/leaderboard/"+url.PathEscape(want.ProfileID), nil, nil, &got)
			if err == nil && got != want {
				err = fmt.Errorf("%w: rank of %s is %+v, leaderboard has %+v", ErrInconsistent, want.ProfileID, got, want)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if first == nil {
					first = err
				}
				return
			}
			checked++
		}()
	}
	wg.Wait()
	return checked, first
}
