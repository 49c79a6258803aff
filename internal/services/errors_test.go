package services_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"equalmedia/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalAPI, "googlecloud", "recognize", "request failed", base)
	if !errors.Is(err, services.ErrExternalAPI) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"googlecloud", "recognize", "request failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, " ", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.Wrap(services.ErrConfiguration, "googlecloud", "", "api key missing", nil), http.StatusPreconditionFailed},
		{services.Wrap(services.ErrValidation, "panels", "", "empty text", nil), http.StatusBadRequest},
		{fmt.Errorf("%w: busy", services.ErrConflict), http.StatusConflict},
		{services.Wrap(services.ErrExternalAPI, "googlecloud", "", "", errors.New("400")), http.StatusBadGateway},
		{services.ErrTimeout, http.StatusGatewayTimeout},
		{services.ErrNotFound, http.StatusNotFound},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := services.HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
