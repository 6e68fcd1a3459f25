package core_test

import (
	"context"
	"testing"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
	"github.com/rumCAJs/atomicapp/pkg/models"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

func friendPublicIDs(friends []models.Friend) []string {
	ids := make([]string, len(friends))
	for i, f := range friends {
		ids[i] = f.PublicID
	}
	return ids
}

func TestFriendRequest_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice", "ali")
	bob := e.signup(t, "bob", "bob")

	res, err := e.friends.Request(ctx, alice.PublicID, bob.PublicID)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if res.Message != "friend request sent" {
		t.Fatalf("first request message = %q", res.Message)
	}

	res, err = e.friends.Request(ctx, alice.PublicID, bob.PublicID)
	if err != nil {
		t.Fatalf("repeat Request: %v", err)
	}
	if res.Message != "already requested" {
		t.Fatalf("repeat request message = %q", res.Message)
	}

	// Exactly one outgoing edge, still pending.
	pending, err := e.friends.List(ctx, alice.PublicID, repository.FilterRequested)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pending) != 1 || pending[0].PublicID != bob.PublicID {
		t.Fatalf("pending list = %v, want just bob", friendPublicIDs(pending))
	}
}

func TestFriendRequest_MutualAutoAccept(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice", "ali")
	bob := e.signup(t, "bob", "bob")

	if _, err := e.friends.Request(ctx, alice.PublicID, bob.PublicID); err != nil {
		t.Fatalf("Request A->B: %v", err)
	}
	res, err := e.friends.Request(ctx, bob.PublicID, alice.PublicID)
	if err != nil {
		t.Fatalf("Request B->A: %v", err)
	}
	if res.Message != "friend request accepted" {
		t.Fatalf("mutual request message = %q", res.Message)
	}

	// Both sides list the friendship as accepted.
	for _, pair := range []struct{ who, wants string }{
		{alice.PublicID, bob.PublicID},
		{bob.PublicID, alice.PublicID},
	} {
		accepted, err := e.friends.List(ctx, pair.who, repository.FilterAccepted)
		if err != nil {
			t.Fatalf("List accepted: %v", err)
		}
		if len(accepted) != 1 || accepted[0].PublicID != pair.wants {
			t.Fatalf("accepted list for %s = %v, want %s", pair.who, friendPublicIDs(accepted), pair.wants)
		}
	}

	res, err = e.friends.Request(ctx, alice.PublicID, bob.PublicID)
	if err != nil {
		t.Fatalf("Request after accept: %v", err)
	}
	if res.Message != "already friends" {
		t.Fatalf("request-after-accept message = %q", res.Message)
	}
}

func TestFriendProcess_AcceptAndReject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice", "ali")
	bob := e.signup(t, "bob", "bob")
	carol := e.signup(t, "carol", "car")

	if _, err := e.friends.Request(ctx, alice.PublicID, bob.PublicID); err != nil {
		t.Fatalf("Request A->B: %v", err)
	}
	if _, err := e.friends.Request(ctx, carol.PublicID, bob.PublicID); err != nil {
		t.Fatalf("Request C->B: %v", err)
	}

	res, err := e.friends.Process(ctx, bob.PublicID, alice.PublicID, "accept")
	if err != nil {
		t.Fatalf("Process accept: %v", err)
	}
	if !res.Accepted || res.Rejected {
		t.Fatalf("accept result = %+v", res)
	}

	res, err = e.friends.Process(ctx, bob.PublicID, carol.PublicID, "reject")
	if err != nil {
		t.Fatalf("Process reject: %v", err)
	}
	if res.Accepted || !res.Rejected {
		t.Fatalf("reject result = %+v", res)
	}

	// The rejected pair shows in "all" but never in "accepted".
	accepted, err := e.friends.List(ctx, carol.PublicID, repository.FilterAccepted)
	if err != nil {
		t.Fatalf("List accepted: %v", err)
	}
	if len(accepted) != 0 {
		t.Fatalf("carol's accepted list = %v, want empty", friendPublicIDs(accepted))
	}
	all, err := e.friends.List(ctx, carol.PublicID, repository.FilterAll)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 1 || all[0].PublicID != bob.PublicID {
		t.Fatalf("carol's full list = %v, want just bob", friendPublicIDs(all))
	}
}

func TestFriendProcess_Invalid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice", "ali")
	bob := e.signup(t, "bob", "bob")

	if _, err := e.friends.Process(ctx, bob.PublicID, alice.PublicID, "accept"); !apperr.IsKind(err, apperr.KindFriendRequest) {
		t.Fatalf("process without request = %v, want friend request invalid", err)
	}

	if _, err := e.friends.Request(ctx, alice.PublicID, bob.PublicID); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if _, err := e.friends.Process(ctx, bob.PublicID, alice.PublicID, "ignore"); !apperr.IsKind(err, apperr.KindFriendRequest) {
		t.Fatalf("unknown action = %v, want friend request invalid", err)
	}
	if _, err := e.friends.Process(ctx, bob.PublicID, alice.PublicID, "accept"); err != nil {
		t.Fatalf("Process accept: %v", err)
	}

	// Accepted edges can no longer be processed.
	if _, err := e.friends.Process(ctx, bob.PublicID, alice.PublicID, "reject"); !apperr.IsKind(err, apperr.KindFriendRequest) {
		t.Fatalf("re-process accepted edge = %v, want friend request invalid", err)
	}

	if _, err := e.friends.Request(ctx, alice.PublicID, alice.PublicID); !apperr.IsKind(err, apperr.KindFriendRequest) {
		t.Fatalf("self request = %v, want friend request invalid", err)
	}
}
