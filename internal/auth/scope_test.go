package auth

import (
	"reflect"
	"testing"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

func TestScopeForUser_OrdinaryUsesAssignedQueues(t *testing.T) {
	user := &domain.User{ID: 7, Profile: domain.ProfileUser, QueueIDs: []int64{1, 2}}

	scope := ScopeForUser(user, []int64{3, 4})

	if scope.Elevated {
		t.Fatal("ordinary user must not be elevated")
	}
	if !scope.Restrict {
		t.Fatal("ordinary user must always be queue-restricted")
	}
	if !reflect.DeepEqual(scope.QueueIDs, []int64{1, 2}) {
		t.Errorf("QueueIDs = %v, want assigned queues [1 2]; caller list must be ignored", scope.QueueIDs)
	}
}

func TestScopeForUser_OrdinaryWithoutQueuesGetsSentinel(t *testing.T) {
	user := &domain.User{ID: 7, Profile: domain.ProfileUser}

	scope := ScopeForUser(user, nil)

	if !scope.Restrict {
		t.Fatal("scope must stay restricted")
	}
	if !reflect.DeepEqual(scope.QueueIDs, []int64{sentinelQueueID}) {
		t.Errorf("QueueIDs = %v, want sentinel %d", scope.QueueIDs, sentinelQueueID)
	}
}

func TestScopeForUser_ElevatedOverride(t *testing.T) {
	for _, profile := range []domain.Profile{domain.ProfileAdmin, domain.ProfileSuperAdmin} {
		user := &domain.User{ID: 1, Profile: profile, QueueIDs: []int64{9}}

		scope := ScopeForUser(user, []int64{3, 4})
		if !scope.Elevated {
			t.Fatalf("%s must be elevated", profile)
		}
		if !scope.Restrict || !reflect.DeepEqual(scope.QueueIDs, []int64{3, 4}) {
			t.Errorf("%s with explicit list: scope = %+v, want restricted to [3 4]", profile, scope)
		}

		scope = ScopeForUser(user, nil)
		if scope.Restrict {
			t.Errorf("%s without explicit list must be unrestricted, got %+v", profile, scope)
		}
	}
}

func TestElevated(t *testing.T) {
	if Elevated(domain.ProfileUser) {
		t.Error("user profile must not be elevated")
	}
	if !Elevated(domain.ProfileAdmin) || !Elevated(domain.ProfileSuperAdmin) {
		t.Error("admin and superadmin must both be elevated")
	}
}
