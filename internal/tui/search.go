package tui

// SearchMsg represents messages that the search component handles
type SearchMsg interface {
	isSearchMsg()
}

// Search message implementations
type StartSearchMsg struct{}

func (StartSearchMsg) isSearchMsg() {}

type UpdateSearchInputMsg struct {
	Input string
}

func (UpdateSearchInputMsg) isSearchMsg() {}

type ExecuteSearchMsg struct{}

func (ExecuteSearchMsg) isSearchMsg() {}

type CancelSearchMsg struct{}

func (CancelSearchMsg) isSearchMsg() {}

type ClearSearchMsg struct{}

func (ClearSearchMsg) isSearchMsg() {}

// SearchModel holds the search input and the query currently applied to
// the item list
type SearchModel struct {
	Active bool   // true while the user is typing
	Input  string // text being typed
	Query  string // applied query, empty when the full history is shown
}

// NewSearchModel creates a new search model with default values
func NewSearchModel() SearchModel {
	return SearchModel{}
}

// Update applies a search message
func (s *SearchModel) Update(msg SearchMsg) error {
	switch m := msg.(type) {
	case StartSearchMsg:
		s.Active = true
		s.Input = s.Query
	case UpdateSearchInputMsg:
		s.Input = m.Input
	case ExecuteSearchMsg:
		s.Query = s.Input
		s.Active = false
	case CancelSearchMsg:
		s.Active = false
		s.Input = ""
	case ClearSearchMsg:
		s.Active = false
		s.Input = ""
		s.Query = ""
	}
	return nil
}

// IsActive returns whether search input is open
func (s *SearchModel) IsActive() bool {
	return s.Active
}

// Backspace removes the last rune of the input
func (s *SearchModel) Backspace() {
	runes := []rune(s.Input)
	if len(runes) > 0 {
		s.Input = string(runes[:len(runes)-1])
	}
}
