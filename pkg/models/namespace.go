package models

// Namespace groups pages under a shared permission mode. Part Unix group,
// part Unix directory. Key = namespace name in the namespaces keyspace.
type Namespace struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
	Mode  uint16 `json:"mode"`
	// Umask is subtracted from Page.DefaultMode when pages are created in
	// this namespace.
	Umask   uint16              `json:"umask"`
	Members map[string]struct{} `json:"members"`
}

const (
	NamespaceDefaultMode  uint16 = 0o777
	NamespaceDefaultUmask uint16 = 0o022
)

// NewNamespace builds a fresh namespace with no members and the default
// umask. The owner is implicitly fully privileged regardless of mode.
func NewNamespace(name, owner string, mode uint16) *Namespace {
	return &Namespace{
		Name:    name,
		Owner:   owner,
		Mode:    mode,
		Umask:   NamespaceDefaultUmask,
		Members: map[string]struct{}{},
	}
}

// AddMember records membership on the namespace side. The caller persists
// both sides in one transaction; see store.JoinNamespace.
func (n *Namespace) AddMember(username string) {
	if n.Members == nil {
		n.Members = map[string]struct{}{}
	}
	n.Members[username] = struct{}{}
}

// AccessMode implements access.Entity.
func (n *Namespace) AccessMode() uint16 { return n.Mode }

// AccessOwner implements access.Entity.
func (n *Namespace) AccessOwner() string { return n.Owner }

// Grouped reports whether the user is a member of this namespace.
func (n *Namespace) Grouped(u *User) bool {
	if u == nil {
		return false
	}
	_, ok := n.Members[u.Name]
	return ok
}
