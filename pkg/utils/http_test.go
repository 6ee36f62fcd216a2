package utils

import (
	"fmt"
	"net/http"
	"testing"

	"wikid/pkg/wikierr"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{wikierr.ErrAuth, http.StatusUnauthorized},
		{wikierr.ErrAccess, http.StatusForbidden},
		{wikierr.InvalidArgument("op", fmt.Errorf("bad mode")), http.StatusBadRequest},
		{wikierr.Io("op", fmt.Errorf("disk")), http.StatusInternalServerError},
		{wikierr.Corrupt("op", fmt.Errorf("decode")), http.StatusInternalServerError},
		{fmt.Errorf("anything else"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := ErrorStatus(c.err); got != c.want {
			t.Fatalf("ErrorStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
