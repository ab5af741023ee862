package ratelimit

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyFunc(t *testing.T) {
	cases := []struct {
		name       string
		keyHeader  string
		trust      bool
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{name: "remote addr host", remoteAddr: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "key header wins", keyHeader: "X-API-Key", headers: map[string]string{"X-API-Key": " abc "}, remoteAddr: "10.0.0.1:1", want: "abc"},
		{name: "blank key header ignored", keyHeader: "X-API-Key", headers: map[string]string{"X-API-Key": "  "}, remoteAddr: "10.0.0.1:1", want: "10.0.0.1"},
		{name: "xff ignored untrusted", headers: map[string]string{"X-Forwarded-For": "1.1.1.1"}, remoteAddr: "10.0.0.1:1", want: "10.0.0.1"},
		{name: "xff first hop trusted", trust: true, headers: map[string]string{"X-Forwarded-For": " 1.1.1.1 , 2.2.2.2"}, remoteAddr: "10.0.0.1:1", want: "1.1.1.1"},
		{name: "real ip trusted", trust: true, headers: map[string]string{"X-Real-IP": "3.3.3.3"}, remoteAddr: "10.0.0.1:1", want: "3.3.3.3"},
		{name: "remote addr without port", remoteAddr: "10.0.0.9", want: "10.0.0.9"},
		{name: "unknown", remoteAddr: "", want: "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, DefaultKeyFunc(tc.keyHeader, tc.trust)(req))
		})
	}
}
