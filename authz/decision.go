package authz

// Code classifies the outcome of an authorization check. Anything other
// than CodeAllow is a deny, and each deny maps to one HTTP status.
type Code int

const (
	CodeAllow Code = iota
	CodeUnauthenticated
	CodeForbidden
	CodeValidationFailed
	CodeNotFound
	CodeConflict
)

func (c Code) String() string {
	switch c {
	case CodeAllow:
		return "allow"
	case CodeUnauthenticated:
		return "unauthenticated"
	case CodeForbidden:
		return "forbidden"
	case CodeValidationFailed:
		return "validation_failed"
	case CodeNotFound:
		return "not_found"
	case CodeConflict:
		return "conflict"
	}
	return "unknown"
}

// Decision is the single contract the authorization layer exposes to the
// HTTP layer: allow, or deny with a classified reason.
type Decision struct {
	Code   Code
	Reason string
}

func (d Decision) Allowed() bool { return d.Code == CodeAllow }

func Allow() Decision { return Decision{Code: CodeAllow} }

func Unauthenticated() Decision {
	return Decision{Code: CodeUnauthenticated, Reason: "authentication required"}
}

func Forbidden(reason string) Decision {
	return Decision{Code: CodeForbidden, Reason: reason}
}

func ValidationFailed(reason string) Decision {
	return Decision{Code: CodeValidationFailed, Reason: reason}
}

func NotFound(reason string) Decision {
	return Decision{Code: CodeNotFound, Reason: reason}
}

func Conflict(reason string) Decision {
	return Decision{Code: CodeConflict, Reason: reason}
}

// Identity is the authenticated requester. A nil Identity is an
// anonymous request.
type Identity struct {
	UserID   uint
	MemberID uint
	Role     string
}

func (id *Identity) Anonymous() bool { return id == nil || id.UserID == 0 }

// IsAdmin reports whether the requester holds the site-wide admin role,
// which is distinct from per-group admin status.
func (id *Identity) IsAdmin() bool { return id != nil && id.Role == "admin" }
