package enums

import "testing"

func TestCategoryMappingIsBidirectional(t *testing.T) {
	for _, c := range Categories {
		back, err := CategoryFromDisplay(c.Display())
		if err != nil {
			t.Fatalf("display %q did not resolve: %v", c.Display(), err)
		}
		if back != c {
			t.Fatalf("expected %s got %s", c, back)
		}
		code, err := CategoryFromCode(string(c))
		if err != nil || code != c {
			t.Fatalf("code %q did not resolve: %v", c, err)
		}
	}
}

func TestCategoryDisplayAndTitle(t *testing.T) {
	if CategoryProfitable.Display() != "rentavel" {
		t.Fatalf("unexpected display %q", CategoryProfitable.Display())
	}
	if CategoryHealth.Title() != "GoodLife" {
		t.Fatalf("unexpected title %q", CategoryHealth.Title())
	}
	if _, err := CategoryFromDisplay("r_mais"); err == nil {
		t.Fatalf("internal code must not resolve as display code")
	}
	if c, err := ParseCategory("perfumaria"); err != nil || c != CategoryPerfumery {
		t.Fatalf("ParseCategory display failed: %v %v", c, err)
	}
}

func TestUserRoleParsing(t *testing.T) {
	role, err := ParseUserRole(" Gerente ")
	if err != nil || role != UserRoleManager {
		t.Fatalf("expected gerente, got %q %v", role, err)
	}
	if !UserRoleLead.CanManageUsers() || UserRoleConsultant.CanManageUsers() {
		t.Fatalf("unexpected manage permissions")
	}
	if _, err := ParseUserRole("admin"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestUserStatusCanLogin(t *testing.T) {
	if !UserStatusActive.CanLogin() {
		t.Fatalf("active must login")
	}
	for _, s := range []UserStatus{UserStatusInactive, UserStatusBlocked, UserStatusPending} {
		if s.CanLogin() {
			t.Fatalf("%s must not login", s)
		}
	}
}

func TestStoredStatusFor(t *testing.T) {
	cases := map[PeriodStatus]StoredPeriodStatus{
		PeriodStatusCurrent: StoredPeriodActive,
		PeriodStatusPast:    StoredPeriodClosed,
		PeriodStatusFuture:  StoredPeriodFuture,
	}
	for in, want := range cases {
		if got := StoredStatusFor(in); got != want {
			t.Fatalf("StoredStatusFor(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestParseSalesRangeDefaultsToToday(t *testing.T) {
	r, err := ParseSalesRange("")
	if err != nil || r != SalesRangeToday {
		t.Fatalf("expected today, got %q %v", r, err)
	}
	if _, err := ParseSalesRange("year"); err == nil {
		t.Fatalf("expected error for unknown range")
	}
}
