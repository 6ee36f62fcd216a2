package access

import (
	"testing"

	"wikid/pkg/models"
)

func TestHasBits(t *testing.T) {
	cases := []struct {
		mode    uint16
		kind    uint16
		request uint16
		want    bool
	}{
		{0o644, Owner, Read, true},
		{0o644, Owner, Write, true},
		{0o644, Owner, Manage, false},
		{0o644, Namespace, Read, true},
		{0o644, Namespace, Write, false},
		{0o644, Others, Read, true},
		{0o644, Others, Write, false},
		{0o700, Others, Read, false},
		{0o070, Namespace, Manage, false},
		{0o071, Others, Manage, true},
		{0o000, Owner, Read, false},
		{0o777, Others, Manage, true},
	}
	for _, c := range cases {
		if got := Has(c.mode, c.kind, c.request); got != c.want {
			t.Fatalf("Has(%#o, %d, %#o) = %v, want %v", c.mode, c.kind, c.request, got, c.want)
		}
	}
}

func TestEvaluateOwnerBypassesMode(t *testing.T) {
	ns := models.NewNamespace("team", "alice", 0o000)
	alice := models.NewUser("alice", "")
	if !Evaluate(ns, alice, Read) || !Evaluate(ns, alice, Write) || !Evaluate(ns, alice, Manage) {
		t.Fatal("owner should pass regardless of mode bits")
	}
}

func TestEvaluateMetaBypasses(t *testing.T) {
	ns := models.NewNamespace("team", "alice", 0o000)
	meta := models.NewUser(models.Meta, "")
	if !Evaluate(ns, meta, Manage) {
		t.Fatal("meta user should pass everything")
	}
}

func TestEvaluateMemberUsesGroupBits(t *testing.T) {
	ns := models.NewNamespace("team", "alice", 0o740)
	bob := models.NewUser("bob", "")
	if Evaluate(ns, bob, Read) {
		t.Fatal("non-member should fall to others bits (0)")
	}
	ns.AddMember("bob")
	bob.Join("team")
	if !Evaluate(ns, bob, Read) {
		t.Fatal("member should read via group bits")
	}
	if Evaluate(ns, bob, Write) {
		t.Fatal("group bits do not grant write here")
	}
}

func TestEvaluateAnonymousFallsToOthers(t *testing.T) {
	open := models.NewNamespace("public", "alice", 0o777)
	closed := models.NewNamespace("private", "alice", 0o770)
	if !Evaluate(open, nil, Read) {
		t.Fatal("anonymous should read a world-readable namespace")
	}
	if Evaluate(closed, nil, Read) {
		t.Fatal("anonymous must not read a namespace without others bits")
	}
}

func TestEvaluatePageThroughNamespaceMembership(t *testing.T) {
	p := &models.Page{Slug: "intro", Mode: 0o640, Owner: "alice"}
	bob := models.NewUser("bob", "")
	if Evaluate(p.In("team"), bob, Read) {
		t.Fatal("bob is not a member, others bits deny read")
	}
	bob.Join("team")
	if !Evaluate(p.In("team"), bob, Read) {
		t.Fatal("membership should grant read via group bits")
	}
	if Evaluate(p.In("team"), bob, Write) {
		t.Fatal("group bits deny write")
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("755")
	if err != nil {
		t.Fatalf("ParseMode: %v", err)
	}
	if m != 0o755 {
		t.Fatalf("ParseMode(755) = %#o", m)
	}
	if _, err := ParseMode("9x"); err == nil {
		t.Fatal("non-octal input should fail")
	}
	if _, err := ParseMode(""); err == nil {
		t.Fatal("empty input should fail")
	}
}
