package social

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"smi-los/internal/model"
)

func TestFormatMessage(t *testing.T) {
	a := model.Article{
		Title:   "Ventilation Testing Explained",
		Content: "Short description of the article.",
	}
	got := FormatMessage(a, "https://blog.example.com")
	if !strings.Contains(got, a.Title) {
		t.Errorf("missing title: %q", got)
	}
	if !strings.Contains(got, "Short description of the article....") {
		t.Errorf("missing description: %q", got)
	}
	if !strings.Contains(got, "https://blog.example.com") {
		t.Errorf("missing blog link: %q", got)
	}
	if !strings.Contains(got, "#energyaudit") {
		t.Errorf("missing hashtags: %q", got)
	}
}

func TestFormatMessage_TruncatesDescription(t *testing.T) {
	long := strings.Repeat("é", 250)
	a := model.Article{Title: "t", Content: long}
	got := FormatMessage(a, "")
	if strings.Contains(got, long) {
		t.Errorf("description not truncated")
	}
	if !strings.Contains(got, strings.Repeat("é", 200)+"...") {
		t.Errorf("truncation not at 200 runes: %q", got)
	}
}

func TestFormatMessage_NoBlogURL(t *testing.T) {
	got := FormatMessage(model.Article{Title: "t", Content: "c"}, "")
	if strings.Contains(got, "http") {
		t.Errorf("unexpected link in message: %q", got)
	}
}

func TestInstagramPublish_RequiresAsset(t *testing.T) {
	ig := NewInstagram("token", "account", "v18.0", time.Second)
	if _, err := ig.Publish(context.Background(), "message", "link"); !errors.Is(err, ErrAssetRequired) {
		t.Fatalf("err = %v, want ErrAssetRequired", err)
	}
}

func TestFacebookPublish(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page-1/feed" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = r.PostForm
		json.NewEncoder(w).Encode(map[string]string{"id": "page-1_55"})
	}))
	defer srv.Close()

	fb := &Facebook{accessToken: "token", pageID: "page-1", baseURL: srv.URL, http: srv.Client()}
	id, err := fb.Publish(context.Background(), "announcement text", "https://blog.example.com")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id != "page-1_55" {
		t.Errorf("id = %q, want page-1_55", id)
	}
	if form.Get("message") != "announcement text" {
		t.Errorf("message = %q", form.Get("message"))
	}
	if form.Get("link") != "https://blog.example.com" {
		t.Errorf("link = %q", form.Get("link"))
	}
	if form.Get("access_token") != "token" {
		t.Errorf("access_token = %q", form.Get("access_token"))
	}
}

func TestFacebookPublish_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad token"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	fb := &Facebook{accessToken: "token", pageID: "page-1", baseURL: srv.URL, http: srv.Client()}
	if _, err := fb.Publish(context.Background(), "m", ""); err == nil {
		t.Fatalf("expected error on 400")
	}
}

func TestInstagramPublishImage(t *testing.T) {
	var containerForm, publishForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		switch r.URL.Path {
		case "/account-1/media":
			containerForm = r.PostForm
			json.NewEncoder(w).Encode(map[string]string{"id": "container-9"})
		case "/account-1/media_publish":
			publishForm = r.PostForm
			json.NewEncoder(w).Encode(map[string]string{"id": "media-7"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ig := &Instagram{accessToken: "token", accountID: "account-1", baseURL: srv.URL, http: srv.Client()}
	id, err := ig.PublishImage(context.Background(), "https://img.example.com/cover.jpg", "caption text")
	if err != nil {
		t.Fatalf("PublishImage: %v", err)
	}
	if id != "media-7" {
		t.Errorf("id = %q, want media-7", id)
	}
	if containerForm.Get("image_url") != "https://img.example.com/cover.jpg" {
		t.Errorf("image_url = %q", containerForm.Get("image_url"))
	}
	if containerForm.Get("caption") != "caption text" {
		t.Errorf("caption = %q", containerForm.Get("caption"))
	}
	if publishForm.Get("creation_id") != "container-9" {
		t.Errorf("creation_id = %q, container id not carried into publish step", publishForm.Get("creation_id"))
	}
}

func TestInstagramPublishImage_ContainerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"invalid image"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	ig := &Instagram{accessToken: "token", accountID: "account-1", baseURL: srv.URL, http: srv.Client()}
	if _, err := ig.PublishImage(context.Background(), "https://img.example.com/bad.jpg", "c"); err == nil {
		t.Fatalf("expected error when container creation fails")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no publish attempt after failed container)", calls)
	}
}

func TestPublisherNames(t *testing.T) {
	if got := NewFacebook("t", "p", "v18.0", time.Second).Name(); got != "facebook" {
		t.Errorf("facebook name = %q", got)
	}
	if got := NewInstagram("t", "a", "v18.0", time.Second).Name(); got != "instagram" {
		t.Errorf("instagram name = %q", got)
	}
}
