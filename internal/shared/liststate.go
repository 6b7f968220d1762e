package shared

// ListStatus is the render branch of a list page.
type ListStatus string

const (
	ListError ListStatus = "error"
	ListEmpty ListStatus = "empty"
	ListReady ListStatus = "ready"
)

// ListState is the outcome of fetching a list: failed, empty or populated.
// Exactly one of IsError, IsEmpty and IsReady is true.
type ListState[T any] struct {
	Status  ListStatus
	Items   []T
	Message string
}

// NewListState derives the state from a fetch result.
func NewListState[T any](items []T, err error) ListState[T] {
	switch {
	case err != nil:
		return ListState[T]{Status: ListError, Message: UserSafeMessage(err)}
	case len(items) == 0:
		return ListState[T]{Status: ListEmpty, Items: []T{}}
	default:
		return ListState[T]{Status: ListReady, Items: items}
	}
}

func (s ListState[T]) IsError() bool { return s.Status == ListError }

func (s ListState[T]) IsEmpty() bool { return s.Status == ListEmpty }

func (s ListState[T]) IsReady() bool { return s.Status == ListReady }
