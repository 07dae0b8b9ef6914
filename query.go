package userauth

// Predicate is a single equality filter over a plain user attribute.
type Predicate struct {
	Field string
	Value string
}

// OrGroup matches when any of its fields equals the value. The credential
// resolver emits one OrGroup for combined email/username login.
type OrGroup struct {
	Fields []string
	Value  string
}

// Query is the explicit predicate list handed to [UserStore.FindOne],
// independent of any particular storage backend.
type Query struct {
	Predicates []Predicate
	Or         *OrGroup

	// IsGuest, when set, filters on the guest flag.
	IsGuest *bool

	// IncludeTrashed includes soft-deleted users. Manager-level lookups set
	// this so guest merges and historical logins keep working.
	IncludeTrashed bool
}

// Matches evaluates the query against a single user, letting any backend
// implement [UserStore.FindOne] by scanning. Store implementations with a
// real query engine translate the predicate list instead.
func (q Query) Matches(u *User) bool {
	if u == nil {
		return false
	}
	if !q.IncludeTrashed && u.Trashed() {
		return false
	}
	if q.IsGuest != nil && u.IsGuest != *q.IsGuest {
		return false
	}

	for _, p := range q.Predicates {
		value, ok := u.Attribute(p.Field)
		if !ok || value != p.Value {
			return false
		}
	}

	if q.Or != nil {
		matched := false
		for _, field := range q.Or.Fields {
			if value, ok := u.Attribute(field); ok && value == q.Or.Value {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}
