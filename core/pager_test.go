package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputePage(t *testing.T) {
	type testCase struct {
		name     string
		current  int
		limit    int
		total    int
		expected PageState
	}

	testCases := []testCase{
		{
			name:     "first page",
			current:  1,
			limit:    10,
			total:    25,
			expected: PageState{Current: 1, Count: 3, From: 1, To: 10, Total: 25},
		},
		{
			name:     "last partial page",
			current:  3,
			limit:    10,
			total:    25,
			expected: PageState{Current: 3, Count: 3, From: 21, To: 25, Total: 25},
		},
		{
			name:     "past the last page resolves to the last page",
			current:  4,
			limit:    10,
			total:    25,
			expected: PageState{Current: 3, Count: 3, From: 21, To: 25, Total: 25},
		},
		{
			name:     "far past the last page",
			current:  100,
			limit:    10,
			total:    25,
			expected: PageState{Current: 3, Count: 3, From: 21, To: 25, Total: 25},
		},
		{
			name:     "unresolved page resolves from the cursor",
			current:  0,
			limit:    10,
			total:    25,
			expected: PageState{Current: 1, Count: 3, From: 1, To: 10, Total: 25},
		},
		{
			name:     "negative page",
			current:  -3,
			limit:    10,
			total:    25,
			expected: PageState{Current: 1, Count: 3, From: 1, To: 10, Total: 25},
		},
		{
			name:     "exact multiple",
			current:  2,
			limit:    5,
			total:    10,
			expected: PageState{Current: 2, Count: 2, From: 6, To: 10, Total: 10},
		},
		{
			name:     "empty",
			current:  3,
			limit:    10,
			total:    0,
			expected: PageState{},
		},
		{
			name:     "default limit",
			current:  2,
			limit:    0,
			total:    15,
			expected: PageState{Current: 2, Count: 2, From: 11, To: 15, Total: 15},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)

			actual := ComputePage(tc.current, tc.limit, tc.total)
			r.Equal(tc.expected, actual)

			// idempotence
			r.Equal(actual, ComputePage(tc.current, tc.limit, tc.total))
		})
	}
}

func TestComputePage_Properties(t *testing.T) {
	r := require.New(t)

	for limit := 1; limit <= 12; limit++ {
		for total := 0; total <= 60; total++ {
			for current := -2; current <= 15; current++ {
				p := ComputePage(current, limit, total)

				if total == 0 {
					r.Equal(PageState{}, p)
					r.False(p.HasPrevious())
					r.False(p.HasNext())
					continue
				}

				r.LessOrEqual(0, p.From-1)
				r.LessOrEqual(p.From-1, p.To)
				r.LessOrEqual(p.To, p.Total)
				r.LessOrEqual(p.From, p.To)
				r.Equal((total+limit-1)/limit, p.Count)
				r.GreaterOrEqual(p.Current, 1)
				r.LessOrEqual(p.Current, p.Count)
				r.Equal((p.Current-1)*limit+1, p.From)

				r.Equal(p.From > 1, p.HasPrevious())
				r.Equal(p.To < p.Total, p.HasNext())
			}
		}
	}
}

func TestOffset(t *testing.T) {
	r := require.New(t)

	r.Equal(0, Offset(1, 10))
	r.Equal(0, Offset(0, 10))
	r.Equal(0, Offset(-1, 10))
	r.Equal(20, Offset(3, 10))
	r.Equal(10, Offset(2, 0))
}

func TestNavigation(t *testing.T) {
	r := require.New(t)

	middle := ComputePage(2, 10, 25)

	for nav, expected := range map[Navigation]int{
		NavigateFirst:    1,
		NavigatePrevious: 1,
		NavigateNext:     3,
		NavigateLast:     3,
	} {
		target, enabled := nav.target(middle)
		r.True(enabled, nav.String())
		r.Equal(expected, target, nav.String())
		r.Equal(nav, NavigationFromString(nav.String()))
	}

	first := ComputePage(1, 10, 25)
	_, enabled := NavigatePrevious.target(first)
	r.False(enabled)
	_, enabled = NavigateFirst.target(first)
	r.False(enabled)

	last := ComputePage(3, 10, 25)
	_, enabled = NavigateNext.target(last)
	r.False(enabled)
	_, enabled = NavigateLast.target(last)
	r.False(enabled)

	r.Equal(NavigateNone, NavigationFromString("sideways"))
	r.Equal("21-25 of 25", last.String())
}
