package visit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestContext(e *echo.Echo, method, target, body string, rec *httptest.ResponseRecorder) echo.Context {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return e.NewContext(req, rec)
}

func statusOf(t *testing.T, err error, rec *httptest.ResponseRecorder) int {
	t.Helper()
	if err == nil {
		return rec.Code
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("unexpected error: %v", err)
	}
	return he.Code
}

func TestHandler_GetSchedule(t *testing.T) {
	f := newFixture(t, "09:10", false)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	if err := h.GetSchedule(newTestContext(e, http.MethodGet, "/", "", rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var st State
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Current != "4" || len(st.Appointments) != len(SeedAppointments) {
		t.Errorf("unexpected state: current=%s n=%d", st.Current, len(st.Appointments))
	}
}

func TestHandler_DeleteAndUndo(t *testing.T) {
	f := newFixture(t, "09:10", false)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := newTestContext(e, http.MethodDelete, "/", "", rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if code := statusOf(t, h.DeleteAppointment(c), rec); code != http.StatusBadRequest {
		t.Errorf("expected 400 without confirm, got %d", code)
	}

	rec = httptest.NewRecorder()
	c = newTestContext(e, http.MethodDelete, "/?confirm=true", "", rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if code := statusOf(t, h.DeleteAppointment(c), rec); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	rec = httptest.NewRecorder()
	if err := h.Undo(newTestContext(e, http.MethodPost, "/", "", rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"restored":true`) {
		t.Errorf("expected restore, got %s", rec.Body.String())
	}
}

func TestHandler_UpdateAppointment(t *testing.T) {
	f := newFixture(t, "09:10", false)
	h := NewHandler(f.svc)
	e := echo.New()

	tests := []struct {
		name string
		id   string
		body string
		code int
	}{
		{"valid", "2", `{"time":"07:15","visitNotes":"verensokeri"}`, http.StatusOK},
		{"bad time", "2", `{"time":"7.15"}`, http.StatusBadRequest},
		{"unknown", "99", `{"dosage":"2 tabl"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := newTestContext(e, http.MethodPut, "/", tt.body, rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			if code := statusOf(t, h.UpdateAppointment(c), rec); code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, code)
			}
		})
	}
	if list := f.list(); list[0].ID != "2" {
		t.Errorf("expected edited visit to sort first, got %s", list[0].ID)
	}
}

func TestHandler_AssistFlow(t *testing.T) {
	f := newFixture(t, "09:10", true)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	if code := statusOf(t, h.AcceptHelp(newTestContext(e, http.MethodPost, "/?confirm=true", "", rec)), rec); code != http.StatusConflict {
		t.Errorf("expected 409 without demo, got %d", code)
	}

	bootstrapDemo(t, f)

	rec = httptest.NewRecorder()
	if code := statusOf(t, h.AcceptHelp(newTestContext(e, http.MethodPost, "/", "", rec)), rec); code != http.StatusBadRequest {
		t.Errorf("expected 400 without confirm, got %d", code)
	}

	rec = httptest.NewRecorder()
	if code := statusOf(t, h.AcceptHelp(newTestContext(e, http.MethodPost, "/?confirm=true", "", rec)), rec); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(rec.Body.String(), AcceptedIDPrefix) {
		t.Errorf("expected accepted id in body, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	if code := statusOf(t, h.DeclineHelp(newTestContext(e, http.MethodPost, "/?confirm=true", "", rec)), rec); code != http.StatusConflict {
		t.Errorf("expected 409 declining without demo, got %d", code)
	}
}

func TestHandler_OpenAndCurrent(t *testing.T) {
	f := newFixture(t, "09:10", false)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	if code := statusOf(t, h.GetCurrent(newTestContext(e, http.MethodGet, "/", "", rec)), rec); code != http.StatusNotFound {
		t.Errorf("expected 404 before opening, got %d", code)
	}

	rec = httptest.NewRecorder()
	c := newTestContext(e, http.MethodPost, "/", "", rec)
	c.SetParamNames("id")
	c.SetParamValues("8")
	if err := h.OpenAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec = httptest.NewRecorder()
	if err := h.GetCurrent(newTestContext(e, http.MethodGet, "/", "", rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"id":"8"`) {
		t.Errorf("expected appointment 8, got %s", rec.Body.String())
	}
}

func TestHandler_EditModeAndMove(t *testing.T) {
	f := newFixture(t, "09:10", false)
	h := NewHandler(f.svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	if err := h.SetEditMode(newTestContext(e, http.MethodPut, "/", `{"enabled":true}`, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"editMode":true`) {
		t.Errorf("expected edit mode on, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c := newTestContext(e, http.MethodPost, "/", `{"index":0}`, rec)
	c.SetParamNames("id")
	c.SetParamValues("13")
	if code := statusOf(t, h.MoveAppointment(c), rec); code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", code)
	}
	if f.list()[0].ID != "13" {
		t.Errorf("expected 13 moved to the top, got %s", f.list()[0].ID)
	}
}
