package enums

import "testing"

func TestGroupTypeAccepts(t *testing.T) {
	cases := []struct {
		group    GroupType
		client   ClientType
		military MilitaryStatus
		want     bool
	}{
		{GroupTypeQuota, ClientTypeCivilian, "", true},
		{GroupTypeQuota, ClientTypeAthlete, "", true},
		{GroupTypeQuota, ClientTypeMilitary, MilitaryStatusPassive, true},
		{GroupTypeQuota, ClientTypeMilitary, MilitaryStatusActive, false},
		{GroupTypeQuota, ClientTypeCompany, "", false},
		{GroupTypeJustificative, ClientTypeMilitary, MilitaryStatusActive, true},
		{GroupTypeJustificative, ClientTypeMilitary, MilitaryStatusPassive, false},
		{GroupTypeJustificative, ClientTypeCompany, "", true},
		{GroupTypeJustificative, ClientTypeAthlete, "", true},
		{GroupTypeJustificative, ClientTypeCivilian, "", false},
	}
	for _, tc := range cases {
		if got := tc.group.Accepts(tc.client, tc.military); got != tc.want {
			t.Errorf("%s.Accepts(%s, %s) = %v, want %v", tc.group, tc.client, tc.military, got, tc.want)
		}
	}
}

func TestMembershipTransitions(t *testing.T) {
	if !MembershipStatusPending.CanTransitionTo(MembershipStatusConfirmed) {
		t.Fatal("pending -> confirmed must be allowed")
	}
	if MembershipStatusPending.CanTransitionTo(MembershipStatusApproved) {
		t.Fatal("pending -> approved must be disallowed")
	}
	for _, status := range ActiveMembershipStatuses {
		if !status.CanTransitionTo(MembershipStatusCancelled) {
			t.Errorf("%s -> cancelled must be allowed", status)
		}
		if !status.IsCountable() {
			t.Errorf("%s must be countable", status)
		}
	}
	if MembershipStatusCompleted.CanTransitionTo(MembershipStatusCancelled) {
		t.Fatal("completed is terminal")
	}
	if MembershipStatusCancelled.IsCountable() {
		t.Fatal("cancelled must not count toward quota")
	}
}

func TestSerialTransitions(t *testing.T) {
	if !SerialStatusAvailable.CanTransitionTo(SerialStatusAssigned) {
		t.Fatal("available -> assigned must be allowed")
	}
	if !SerialStatusAssigned.CanTransitionTo(SerialStatusAvailable) {
		t.Fatal("liberation (assigned -> available) must be allowed")
	}
	if SerialStatusAvailable.CanTransitionTo(SerialStatusSold) {
		t.Fatal("available -> sold must pass through assigned")
	}
	for _, status := range []SerialStatus{SerialStatusAvailable, SerialStatusAssigned, SerialStatusSold} {
		if !status.CanTransitionTo(SerialStatusRetired) {
			t.Errorf("%s -> retired must be allowed", status)
		}
	}
	if SerialStatusRetired.CanTransitionTo(SerialStatusAvailable) {
		t.Fatal("retired is terminal")
	}
}

func TestReservationTransitions(t *testing.T) {
	if !ReservationStatusAssigned.CanTransitionTo(ReservationStatusReserved) {
		t.Fatal("liberation must revert assigned -> reserved")
	}
	if !ReservationStatusReserved.CountsTowardQuota() || !ReservationStatusAssigned.CountsTowardQuota() {
		t.Fatal("reserved and assigned quantities count toward quota")
	}
	if ReservationStatusCancelled.CountsTowardQuota() {
		t.Fatal("cancelled must not count toward quota")
	}
}

func TestGroupStageForwardOnly(t *testing.T) {
	order := []GroupStage{GroupStageCreated, GroupStageOrdered, GroupStageProforma, GroupStageCustoms, GroupStageArrived, GroupStageClosed}
	for i := 0; i < len(order)-1; i++ {
		if !order[i].CanTransitionTo(order[i+1]) {
			t.Errorf("%s -> %s must be allowed", order[i], order[i+1])
		}
		if order[i+1].CanTransitionTo(order[i]) {
			t.Errorf("%s -> %s must be disallowed (stages advance forward)", order[i+1], order[i])
		}
	}
	if GroupStageArrived.AcceptsNewMembers() || GroupStageClosed.AcceptsNewMembers() {
		t.Fatal("arrived/closed groups must not accept members")
	}
}

func TestParseRoundTrips(t *testing.T) {
	if v, err := ParseGroupType("quota"); err != nil || v != GroupTypeQuota {
		t.Fatalf("ParseGroupType: %v %v", v, err)
	}
	if _, err := ParseGroupType("bogus"); err == nil {
		t.Fatal("bogus group type must fail")
	}
	if v, err := ParseSerialStatus("retired"); err != nil || v != SerialStatusRetired {
		t.Fatalf("ParseSerialStatus: %v %v", v, err)
	}
	if _, err := ParseMembershipStatus(""); err == nil {
		t.Fatal("empty membership status must fail")
	}
}
