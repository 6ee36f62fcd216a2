package models

// Page is a wiki page. Key = "<namespace>/<slug>" in the pages keyspace;
// the namespace leads so prefix scans by namespace stay cheap. Content is
// always the current full text, never a diff.
type Page struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Mode  uint16 `json:"mode"`
	// Owner is empty for pages without one; ownerless pages grant nobody
	// owner-kind access.
	Owner   string `json:"owner,omitempty"`
	Content string `json:"content"`
}

const PageDefaultMode uint16 = 0o666

// PageRef binds a page to the namespace it lives in, which the access rule
// needs for the group-membership check.
type PageRef struct {
	Page      *Page
	Namespace string
}

// In returns the page bound to its namespace for access evaluation.
func (p *Page) In(namespace string) PageRef {
	return PageRef{Page: p, Namespace: namespace}
}

// AccessMode implements access.Entity.
func (r PageRef) AccessMode() uint16 { return r.Page.Mode }

// AccessOwner implements access.Entity.
func (r PageRef) AccessOwner() string { return r.Page.Owner }

// Grouped reports whether the user belongs to the page's namespace.
func (r PageRef) Grouped(u *User) bool { return u.MemberOf(r.Namespace) }
