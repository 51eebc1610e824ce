package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	memcache "pet-wellness/internal/adapters/cache/memory"
	"pet-wellness/internal/router"
)

var fixedNow = time.Date(2024, 6, 14, 15, 30, 0, 0, time.UTC)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil,
		Cache:        memcache.NewReportCache(time.Minute),
		Clock:        func() time.Time { return fixedNow },
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_MoodEntryScoresWindow(t *testing.T) {
	ts := newServer(t)
	ownerID := "owner-1"

	// 1) Owner crea mascota
	petID := createPet(t, ts.URL, ownerID, map[string]any{
		"name":    "Milo",
		"species": "dog",
		"breed":   "mixed",
		"sex":     "male",
	})

	// 2) Reporte vacío: todo neutral
	{
		rep := getReport(t, ts.URL, ownerID, petID, "week")
		last := rep.Windows[len(rep.Windows)-1]
		if last.Score != 50 || last.HasData {
			t.Fatalf("expected neutral window before records, got %+v", last)
		}
		if rep.Current.HasData || rep.Current.Score != 0 {
			t.Fatalf("expected insufficient data, got %+v", rep.Current)
		}
	}

	// 3) Entrada de diario con ánimo 8
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/diary", ownerID, map[string]any{
			"entry_date":      "2024-06-12",
			"mood_score":      8,
			"behavioral_tags": []string{"playful"},
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create diary, got %d body=%s", st, string(body))
		}
	}

	// 4) La escritura invalida el cache: ventana actual = 80
	{
		rep := getReport(t, ts.URL, ownerID, petID, "week")
		last := rep.Windows[len(rep.Windows)-1]
		if last.Label != "10-16 Jun" || !near(last.Score, 80) || !last.HasData {
			t.Fatalf("unexpected last window %+v", last)
		}
		if !rep.Current.HasData || !near(rep.Current.Score, 80) {
			t.Fatalf("unexpected current score %+v", rep.Current)
		}
	}

	// 5) Lista del diario
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/diary", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list diary, got %d body=%s", st, string(body))
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0]["entry_date"] != "2024-06-12" {
			t.Fatalf("unexpected diary list: %s", string(body))
		}
	}
}

func TestHTTP_VitalResponseCarriesEvaluation(t *testing.T) {
	ts := newServer(t)
	petID := createPet(t, ts.URL, "owner-1", map[string]any{"name": "Luna", "species": "cat"})

	st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/vitals", "owner-1", map[string]any{
		"metric_type": "temperature",
		"value":       41.0,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create vital, got %d body=%s", st, string(body))
	}
	var resp struct {
		Unit       string `json:"unit"`
		Evaluation struct {
			Status string `json:"status"`
		} `json:"evaluation"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Evaluation.Status != "critical" || resp.Unit == "" {
		t.Fatalf("unexpected vital response: %s", string(body))
	}

	st, _ = doReq(t, ts.URL, "POST", "/pets/"+petID+"/vitals", "owner-1", map[string]any{
		"metric_type": "gum_color",
		"value":       9,
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid gum color, got %d", st)
	}
}

func TestHTTP_AccessControl(t *testing.T) {
	ts := newServer(t)
	petID := createPet(t, ts.URL, "owner-1", map[string]any{"name": "Milo", "species": "dog"})

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		want   int
	}{
		{"no claims", "GET", "/pets/" + petID + "/wellness", "", http.StatusUnauthorized},
		{"other user report", "GET", "/pets/" + petID + "/wellness", "intruder", http.StatusForbidden},
		{"owner profile", "GET", "/pets/" + petID, "owner-1", http.StatusOK},
		{"other user profile", "GET", "/pets/" + petID, "intruder", http.StatusForbidden},
		{"owner records", "GET", "/pets/" + petID + "/vitals", "owner-1", http.StatusOK},
		{"other user records", "GET", "/pets/" + petID + "/vitals", "intruder", http.StatusForbidden},
		{"missing pet", "GET", "/pets/does-not-exist/wellness", "owner-1", http.StatusNotFound},
		{"bad granularity", "GET", "/pets/" + petID + "/wellness?granularity=fortnight", "owner-1", http.StatusBadRequest},
		{"inverted range", "GET", "/pets/" + petID + "/wellness?from=2024-06-10&to=2024-06-01", "owner-1", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.user, nil)
			if st != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, st, string(body))
			}
		})
	}
}

func TestHTTP_GetPetByOwner(t *testing.T) {
	ts := newServer(t)
	petID := createPet(t, ts.URL, "owner-1", map[string]any{"name": "Milo", "species": "DOG"})

	st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, "owner-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get pet, got %d body=%s", st, string(body))
	}
	var pet struct {
		ID          string `json:"id"`
		OwnerUserID string `json:"owner_user_id"`
		Species     string `json:"species"`
	}
	if err := json.Unmarshal(body, &pet); err != nil {
		t.Fatalf("decode pet: %v", err)
	}
	if pet.ID != petID || pet.OwnerUserID != "owner-1" || pet.Species != "dog" {
		t.Fatalf("unexpected pet: %s", string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/pets", "owner-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list pets, got %d body=%s", st, string(body))
	}
}

func TestHTTP_StatelessEndpoints(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "POST", "/vitals/evaluate", "", map[string]any{
		"metric_type": "heart_rate",
		"value":       100,
		"species":     "dog",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 evaluate, got %d body=%s", st, string(body))
	}
	var ev struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &ev)
	if ev.Status != "normal" {
		t.Fatalf("unexpected evaluation: %s", string(body))
	}

	st, body = doReq(t, ts.URL, "POST", "/behavior/classify", "", map[string]any{"text": "he was so happy and wagging"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 classify, got %d body=%s", st, string(body))
	}
	var res struct {
		PrimaryEmotion string `json:"primary_emotion"`
	}
	_ = json.Unmarshal(body, &res)
	if res.PrimaryEmotion == "" {
		t.Fatalf("missing primary emotion: %s", string(body))
	}

	st, _ = doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

type reportBody struct {
	Windows []struct {
		Label   string  `json:"label"`
		Score   float64 `json:"score"`
		HasData bool    `json:"has_data"`
	} `json:"windows"`
	Current struct {
		Score   float64 `json:"score"`
		HasData bool    `json:"has_data"`
	} `json:"current"`
}

func getReport(t *testing.T, baseURL, userID, petID, granularity string) reportBody {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/pets/"+petID+"/wellness?granularity="+granularity, userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 report, got %d body=%s", st, string(body))
	}
	var rep reportBody
	if err := json.Unmarshal(body, &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(rep.Windows) == 0 {
		t.Fatalf("report without windows: %s", string(body))
	}
	return rep
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
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
