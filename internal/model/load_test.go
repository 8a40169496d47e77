package model

import "testing"

func TestNextLoadStatus(t *testing.T) {
	cases := []struct {
		from LoadStatus
		want LoadStatus
		ok   bool
	}{
		{LoadStatusPending, LoadStatusAssigned, true},
		{LoadStatusAssigned, LoadStatusPickedUp, true},
		{LoadStatusPickedUp, LoadStatusInTransit, true},
		{LoadStatusInTransit, LoadStatusDelivered, true},
		{LoadStatusDelivered, "", false},
		{LoadStatusCancelled, "", false},
		{"BOGUS", "", false},
	}
	for _, tc := range cases {
		got, ok := NextLoadStatus(tc.from)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NextLoadStatus(%s) = (%s, %v), want (%s, %v)", tc.from, got, ok, tc.want, tc.ok)
		}
	}
}
