package core

import "fmt"

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 10

// PageState describes which record range is currently displayed.
//
// When Total is greater than zero, 1 <= From <= To <= Total holds.
// When Total is zero, all fields are zero.
type PageState struct {
	// 1-based index of the current page
	Current int
	Count   int
	From    int
	To      int
	Total   int
}

// ComputePage converts the requested page, page size and the total number
// of records reported by the endpoint into a PageState.
//
// A page past the last one resolves to the page the cursor falls into,
// which is the last page.
func ComputePage(current, limit, total int) PageState {
	if limit <= 0 {
		limit = DefaultLimit
	}

	from := max(1, (current-1)*limit+1)

	if total <= 0 {
		return PageState{}
	}

	count := (total + limit - 1) / limit

	if current > count {
		// unresolved, the cursor moved past the end (e.g. total shrunk)
		current = 0
		from = min(from, (count-1)*limit+1)
	}
	if current <= 0 {
		current = (from-1)/limit + 1
	}

	to := min(from-1+limit, total)

	return PageState{
		Current: current,
		Count:   count,
		From:    from,
		To:      to,
		Total:   total,
	}
}

// Offset returns the zero based record offset for the requested page.
func Offset(current, limit int) int {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return max(1, (current-1)*limit+1) - 1
}

// HasPrevious reports whether "first" and "previous" navigation is enabled.
func (p PageState) HasPrevious() bool {
	return p.From > 1
}

// HasNext reports whether "next" and "last" navigation is enabled.
func (p PageState) HasNext() bool {
	return p.To < p.Total
}

func (p PageState) IsEmpty() bool {
	return p.Total == 0
}

func (p PageState) String() string {
	return fmt.Sprintf("%d-%d of %d", p.From, p.To, p.Total)
}

// Navigation is a page navigation action.
type Navigation int

const (
	NavigateNone Navigation = iota
	NavigateFirst
	NavigatePrevious
	NavigateNext
	NavigateLast
)

func NavigationFromString(s string) Navigation {
	switch s {
	case NavigateFirst.String():
		return NavigateFirst
	case NavigatePrevious.String():
		return NavigatePrevious
	case NavigateNext.String():
		return NavigateNext
	case NavigateLast.String():
		return NavigateLast
	default:
		return NavigateNone
	}
}

func (n Navigation) String() string {
	switch n {
	case NavigateFirst:
		return "first"
	case NavigatePrevious:
		return "previous"
	case NavigateNext:
		return "next"
	case NavigateLast:
		return "last"
	default:
		return ""
	}
}

// target returns the page to request for this navigation and whether the
// navigation is enabled in the given state.
func (n Navigation) target(p PageState) (int, bool) {
	switch n {
	case NavigateFirst:
		return 1, p.HasPrevious()
	case NavigatePrevious:
		return p.Current - 1, p.HasPrevious()
	case NavigateNext:
		return p.Current + 1, p.HasNext()
	case NavigateLast:
		return p.Count, p.HasNext()
	default:
		return p.Current, false
	}
}
