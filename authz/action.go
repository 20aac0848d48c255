package authz

// Action is the intent of a request against a guarded resource.
type Action int

const (
	ActionList Action = iota
	ActionRetrieve
	ActionCreate
	ActionUpdate
	ActionPartialUpdate
	ActionDestroy
)

func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionRetrieve:
		return "retrieve"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionPartialUpdate:
		return "partial_update"
	case ActionDestroy:
		return "destroy"
	}
	return "unknown"
}

// IsWrite reports whether the action mutates the target.
func (a Action) IsWrite() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionPartialUpdate || a == ActionDestroy
}
