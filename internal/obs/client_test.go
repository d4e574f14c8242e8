package obs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimk/obs-catalog-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.OBSConfig{
		BaseURL:            server.URL,
		ProgramLevel:       "LS",
		DepartmentsTimeout: 2 * time.Second,
		CoursesTimeout:     2 * time.Second,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
	}, server.Client(), nil)
}

func TestFetchDepartments(t *testing.T) {
	var gotQuery, gotHeader string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("programSeviyeTipiAnahtari")
		gotHeader = r.Header.Get("X-Requested-With")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"dersBransKodu":"BLG","bransKoduId":7},{"dersBransKodu":"MAT","bransKoduId":12}]`))
	})

	departments, err := client.FetchDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, "BLG", departments[0].Code)
	assert.Equal(t, 7, departments[0].ID)
	assert.Equal(t, "LS", gotQuery)
	assert.Equal(t, "XMLHttpRequest", gotHeader)
}

func TestFetchDepartmentsMalformedRecordFailsCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"dersBransKodu":"","bransKoduId":7}]`))
	})

	_, err := client.FetchDepartments(context.Background())
	assert.Error(t, err)

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"dersBransKodu":"BLG","bransKoduId":0}]`))
	})

	_, err = client.FetchDepartments(context.Background())
	assert.Error(t, err)
}

func TestFetchDepartmentsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchDepartments(context.Background())
	assert.Error(t, err)
}

func TestFetchDepartmentTableExtractsCellRows(t *testing.T) {
	var gotDept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotDept = r.URL.Query().Get("dersBransKoduId")
		w.Write([]byte(`
			<div>
				<table>
					<tr><th>CRN</th><th>Course</th></tr>
					<tr><td> 12345 </td><td>BLG 101E</td><td><b>Introduction</b> to Computing</td></tr>
					<tr><td>54321</td><td>BLG 102</td></tr>
				</table>
				<table><tr><td>ignored second table</td></tr></table>
			</div>`))
	})

	rows, err := client.FetchDepartmentTable(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "7", gotDept)

	// Header row has no <td> cells and is dropped.
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"12345", "BLG 101E", "Introduction to Computing"}, rows[0])
	assert.Equal(t, []string{"54321", "BLG 102"}, rows[1])
}

func TestFetchDepartmentTableNoTable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div>nothing here</div>`))
	})

	rows, err := client.FetchDepartmentTable(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestFetchTimeoutSurfacesAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	client := NewClient(config.OBSConfig{
		BaseURL:        server.URL,
		CoursesTimeout: 20 * time.Millisecond,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}, server.Client(), nil)

	_, err := client.FetchDepartmentTable(context.Background(), 7)
	assert.Error(t, err)
}
