package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func BenchmarkCreateUser(b *testing.B) {
	r := setupRouter(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		body := fmt.Sprintf(`{"firebase_uid":"bench-%d","email":"bench%d@example.com","first_name":"Bench","last_name":"User"}`, i, i)
		req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			b.Fatalf("create: status %d: %s", w.Code, w.Body.String())
		}
	}
}

func BenchmarkGetUser(b *testing.B) {
	r := setupRouter(b)

	req := httptest.NewRequest(http.MethodPost, "/v1/users",
		strings.NewReader(`{"firebase_uid":"bench","email":"bench@example.com","first_name":"Bench","last_name":"User"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		b.Fatalf("seed: status %d: %s", w.Code, w.Body.String())
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/users/1", nil))
		if w.Code != http.StatusOK {
			b.Fatalf("get: status %d", w.Code)
		}
	}
}
