package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vaccine-planner/internal/domain/sharing"
	"vaccine-planner/internal/router"
)

func TestHTTP_ProfileLifecycleAndSchedule(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"

	// 1) Crear perfil con defaults
	profileID := createProfile(t, ts.URL, ownerID, "Ana")

	// 2) El plan por defecto no está vacío y viene ordenado por fecha
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/schedule", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 schedule, got %d body=%s", st, string(body))
		}
		appts := decodeAppointments(t, body)
		if len(appts) == 0 {
			t.Fatalf("expected non-empty default schedule")
		}
		assertSortedByDate(t, appts)
	}

	// 3) Registrar una dosis recibida
	{
		st, body := doReq(t, ts.URL, "POST", "/profiles/"+profileID+"/records", ownerID, map[string]any{
			"vaccine": "Tdap",
			"date":    time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
			"kind":    "dose",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add record, got %d body=%s", st, string(body))
		}
	}

	// 4) Una fecha futura se rechaza
	{
		st, _ := doReq(t, ts.URL, "POST", "/profiles/"+profileID+"/records", ownerID, map[string]any{
			"vaccine":    "Tdap",
			"date":       time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339),
			"kind":       "dose",
			"dose_index": 1,
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for future record, got %d", st)
		}
	}

	// 5) Acotar el plan y recalcular
	{
		st, body := doReq(t, ts.URL, "PUT", "/profiles/"+profileID+"/plan", ownerID, map[string]any{
			"vaccines": []map[string]any{
				{"name": "Tdap", "enabled": true},
			},
			"end_plan_year": time.Now().Year() + 5,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 update plan, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/schedule", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 schedule after plan update, got %d body=%s", st, string(body))
		}
		appts := decodeAppointments(t, body)
		assertSortedByDate(t, appts)
		for _, a := range appts {
			if a.Vaccine != "Tdap" {
				t.Fatalf("only Tdap is enabled, got appointment for %q", a.Vaccine)
			}
		}
		// Con la primera dosis registrada quedan pendientes las que siguen.
		if len(appts) == 0 {
			t.Fatalf("expected remaining doses for Tdap")
		}
	}

	// 6) Export / import como otro usuario
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/export", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 export, got %d body=%s", st, string(body))
		}

		var exported map[string]any
		if err := json.Unmarshal(body, &exported); err != nil {
			t.Fatalf("export: invalid json: %v", err)
		}

		st, body = doReq(t, ts.URL, "POST", "/profiles/import", "owner-2", exported)
		if st != http.StatusCreated {
			t.Fatalf("expected 201 import, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_EndToEnd_DelegationScopes(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	delegateID := "delegate-1"

	// 1) Owner crea perfil
	profileID := createProfile(t, ts.URL, ownerID, "Abuela")

	// 2) Delegado NO puede ver el perfil aún
	{
		st, _ := doReq(t, ts.URL, "GET", "/profiles/"+profileID, delegateID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before grant, got %d", st)
		}
	}

	// 3) Owner invita delegado con scopes acotados (sin records:delete)
	grantID := inviteGrant(t, ts.URL, ownerID, profileID, delegateID, []string{
		string(sharing.ScopeProfileRead),
		string(sharing.ScopeRecordsCreate),
		string(sharing.ScopeScheduleRead),
	})

	// 4) Delegado ve su invitación
	{
		st, body := doReq(t, ts.URL, "GET", "/me/grants", delegateID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing my grants, got %d body=%s", st, string(body))
		}
	}

	// 5) Invitación pendiente todavía no da acceso
	{
		st, _ := doReq(t, ts.URL, "GET", "/profiles/"+profileID, delegateID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 with pending invite, got %d", st)
		}
	}

	// 6) Delegado acepta
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grantID+"/accept", delegateID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept grant, got %d body=%s", st, string(body))
		}
	}

	// 7) Delegado ya puede ver perfil y plan
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID, delegateID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get profile by delegate, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/schedule", delegateID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 schedule by delegate, got %d body=%s", st, string(body))
		}
	}

	// 8) Delegado puede registrar una aplicación
	recordID := ""
	{
		st, body := doReq(t, ts.URL, "POST", "/profiles/"+profileID+"/records", delegateID, map[string]any{
			"vaccine": "Flu",
			"date":    time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
			"kind":    "booster",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add record by delegate, got %d body=%s", st, string(body))
		}

		var resp struct {
			Records []struct {
				ID string `json:"id"`
			} `json:"records"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.Records) == 0 || resp.Records[0].ID == "" {
			t.Fatalf("add record: missing record id body=%s", string(body))
		}
		recordID = resp.Records[0].ID
	}

	// 9) Pero no puede borrarlo (no tiene records:delete)
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/profiles/"+profileID+"/records/"+recordID, delegateID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 delete record without scope, got %d", st)
		}
	}

	// 10) Ni renombrar el perfil (no tiene profile:edit)
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/profiles/"+profileID, delegateID, map[string]any{
			"name": "Hackeada",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 rename without scope, got %d", st)
		}
	}

	// 11) Owner revoca; el delegado pierde acceso inmediatamente
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grantID+"/revoke", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke grant by owner, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/profiles/"+profileID, delegateID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 get profile after revoke, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/profiles/"+profileID+"/records", delegateID, map[string]any{
			"vaccine": "Flu",
			"date":    time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
			"kind":    "booster",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 add record after revoke, got %d", st)
		}
	}
}

func TestHTTP_InviteGrant_RejectsUnknownScope(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	delegateID := "delegate-1"

	profileID := createProfile(t, ts.URL, ownerID, "Ana")

	// scope inválido => 400
	st, _ := doReq(t, ts.URL, "POST", "/profiles/"+profileID+"/grants", ownerID, map[string]any{
		"grantee_user_id": delegateID,
		"scopes":          []string{"schedule:read", "schedule:unknown"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", st)
	}
}

func TestHTTP_VaccineCatalog(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	// El catálogo es público, no requiere auth.
	st, body := doReq(t, ts.URL, "GET", "/vaccines", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list vaccines, got %d body=%s", st, string(body))
	}

	var list []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("list vaccines: invalid json: %v", err)
	}
	if len(list) == 0 {
		t.Fatalf("expected non-empty catalog")
	}

	st, _ = doReq(t, ts.URL, "GET", "/vaccines/Tdap", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get vaccine, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/vaccines/Rabies", "", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 unknown vaccine, got %d", st)
	}
}

type testAppointment struct {
	Vaccine string `json:"vaccine"`
	Kind    string `json:"kind"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
}

func decodeAppointments(t *testing.T, body []byte) []testAppointment {
	t.Helper()

	var out []testAppointment
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("schedule: invalid json: %v body=%s", err, string(body))
	}
	return out
}

func assertSortedByDate(t *testing.T, appts []testAppointment) {
	t.Helper()

	for i := 1; i < len(appts); i++ {
		prev, cur := appts[i-1], appts[i]
		if cur.Year < prev.Year || (cur.Year == prev.Year && cur.Month < prev.Month) {
			t.Fatalf("schedule out of order at %d: %+v before %+v", i, prev, cur)
		}
	}
}

func createProfile(t *testing.T, baseURL, userID, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/profiles", userID, map[string]any{
		"name": name,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create profile, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create profile: missing id body=%s", string(body))
	}
	return resp.ID
}

func inviteGrant(t *testing.T, baseURL, ownerID, profileID, granteeID string, scopes []string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/profiles/"+profileID+"/grants", ownerID, map[string]any{
		"grantee_user_id": granteeID,
		"scopes":          scopes,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 invite grant, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("invite grant: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
