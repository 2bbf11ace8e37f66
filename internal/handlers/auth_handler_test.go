package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewAuthHandler(d.userRepo)

	c, rec := newAuthedContext(t, http.MethodPost, `{"username":"carol","password":"secret123","name":"Carol"}`, 0)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID       uint   `json:"id"`
				Username string `json:"username"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Data.Token == "" || out.Data.User.Username != "carol" {
		t.Fatalf("unexpected register response %+v", out.Data)
	}

	// Password hash must not leak
	stored, err := d.userRepo.GetUserByUsername("carol")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.Password == "secret123" {
		t.Fatalf("password stored in plaintext")
	}

	c, rec = newAuthedContext(t, http.MethodPost, `{"username":"carol","password":"secret123"}`, 0)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_DuplicateUsername(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewAuthHandler(d.userRepo)

	// "alice" is seeded by setupHandlerDeps
	c, _ := newAuthedContext(t, http.MethodPost, `{"username":"alice","password":"secret123","name":"Other Alice"}`, 0)
	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewAuthHandler(d.userRepo)

	c, _ := newAuthedContext(t, http.MethodPost, `{"username":"carol","password":"secret123","name":"Carol"}`, 0)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, _ = newAuthedContext(t, http.MethodPost, `{"username":"carol","password":"wrongpass"}`, 0)
	err := h.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}

	c, _ = newAuthedContext(t, http.MethodPost, `{"username":"nobody","password":"whatever1"}`, 0)
	err = h.Login(c)
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %v", err)
	}
}
