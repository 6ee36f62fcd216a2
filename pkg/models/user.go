package models

// Meta is the superuser name. The user "meta" bypasses every access check
// and the namespace "meta" holds administrative pages.
const Meta = "meta"

// User is a wiki account. Key = username in the users keyspace.
type User struct {
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
	// Namespaces the user belongs to, Unix-group style.
	Namespaces map[string]struct{} `json:"namespaces"`
}

// NewUser builds a user with the given pre-hashed password. Every user
// belongs to the meta namespace and their personal namespace.
func NewUser(name, passwordHash string) *User {
	return &User{
		Name:         name,
		PasswordHash: passwordHash,
		Namespaces: map[string]struct{}{
			Meta: {},
			name: {},
		},
	}
}

// MemberOf reports whether the user belongs to the named namespace.
func (u *User) MemberOf(namespace string) bool {
	if u == nil {
		return false
	}
	_, ok := u.Namespaces[namespace]
	return ok
}

// Join records namespace membership on the user side. The caller persists
// both sides in one transaction; see store.JoinNamespace.
func (u *User) Join(namespace string) {
	if u.Namespaces == nil {
		u.Namespaces = map[string]struct{}{}
	}
	u.Namespaces[namespace] = struct{}{}
}
