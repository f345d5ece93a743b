package middleware

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want RouteClass
	}{
		{"/", RoutePublic},
		{"/analytics", RoutePublic},
		{"/uploads", RoutePublic},
		{"/uploads/datasets/u1/x.csv", RoutePublic},
		{"/auth/callback", RoutePublic},
		{"/dashboard", RouteProtected},
		{"/dashboard/", RouteProtected},
		{"/experiments", RouteProtected},
		{"/experiments/exp_1", RouteProtected},
		{"/rubrics", RouteProtected},
		{"/upload", RouteProtected},
		{"/profile", RouteProtected},
		{"/auth/signin", RouteAuthOnly},
		{"/auth/signup", RouteAuthOnly},
		{"/pricing", RoutePublic},
	}
	for _, tc := range tests {
		if got := Classify(tc.path); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		authenticated bool
		wantRedirect  string
	}{
		{"anonymous on protected", "/dashboard", false, "/auth/signin?redirectTo=%2Fdashboard"},
		{"anonymous on nested protected", "/experiments/exp_1", false, "/auth/signin?redirectTo=%2Fexperiments%2Fexp_1"},
		{"anonymous on public", "/analytics", false, ""},
		{"anonymous on auth page", "/auth/signin", false, ""},
		{"authenticated on protected", "/dashboard", true, ""},
		{"authenticated on auth page", "/auth/signin", true, "/dashboard"},
		{"authenticated on signup", "/auth/signup", true, "/dashboard"},
		{"authenticated on public", "/", true, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.path, tc.authenticated)
			if got.Redirect != tc.wantRedirect {
				t.Fatalf("Decide(%q, %v).Redirect = %q, want %q", tc.path, tc.authenticated, got.Redirect, tc.wantRedirect)
			}
		})
	}
}
