package cmd

import (
	"strings"
	"testing"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

func testRequests(n int) []overseerr.Request {
	requests := make([]overseerr.Request, n)
	for i := range requests {
		requests[i] = overseerr.Request{ID: 100 + i, Status: overseerr.RequestStatusPending}
	}
	return requests
}

func TestParseSelection(t *testing.T) {
	requests := testRequests(5)

	tests := []struct {
		name    string
		input   string
		wantIDs []int
		wantErr string
	}{
		{name: "empty cancels", input: "  ", wantIDs: nil},
		{name: "all", input: "ALL", wantIDs: []int{100, 101, 102, 103, 104}},
		{name: "list keeps order and drops duplicates", input: "3, 1,3,,5", wantIDs: []int{102, 100, 104}},
		{name: "not a number", input: "1,x", wantErr: "invalid number 'x'"},
		{name: "out of range", input: "6", wantErr: "must be between 1 and 5"},
		{name: "zero", input: "0", wantErr: "must be between 1 and 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.input, requests)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("parseSelection(%q) error = %v, want %q", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d requests, want %d", len(got), len(tt.wantIDs))
			}
			for i, r := range got {
				if r.ID != tt.wantIDs[i] {
					t.Errorf("selection %d = request %d, want %d", i, r.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestReadSelection(t *testing.T) {
	got, err := readSelection(strings.NewReader("2\n"), testRequests(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 101 {
		t.Errorf("got %+v, want request 101", got)
	}

	got, err = readSelection(strings.NewReader(""), testRequests(3))
	if err != nil || got != nil {
		t.Errorf("EOF should select nothing, got %v, %v", got, err)
	}
}

func TestOnlyPending(t *testing.T) {
	requests := testRequests(4)
	requests[1].Status = overseerr.RequestStatusApproved
	requests[3].Status = overseerr.RequestStatusDeclined

	got := onlyPending(requests)
	if len(got) != 2 || got[0].ID != 100 || got[1].ID != 102 {
		t.Errorf("onlyPending() = %+v", got)
	}
}

func TestFormatting(t *testing.T) {
	if got := plural(1, "request"); got != "1 request" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(3, "request"); got != "3 requests" {
		t.Errorf("plural(3) = %q", got)
	}
	if got := truncate("Amélie", 10); got != "Amélie" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("The Lord of the Rings", 10); got != "The Lor..." {
		t.Errorf("truncate long = %q", got)
	}
}

func TestCanManageRequests(t *testing.T) {
	tests := []struct {
		perms overseerr.Permission
		want  bool
	}{
		{overseerr.PermissionAdmin, true},
		{overseerr.PermissionManageRequests | overseerr.PermissionRequest, true},
		{overseerr.PermissionRequest, false},
		{overseerr.PermissionNone, false},
	}

	for _, tt := range tests {
		if got := canManageRequests(overseerr.User{Permissions: tt.perms}); got != tt.want {
			t.Errorf("canManageRequests(%d) = %v, want %v", tt.perms, got, tt.want)
		}
	}
}
